package core

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Ledger is the in-memory view of the dedup set for one run. It is loaded
// once at run start, mutated by the single pipeline goroutine, and persisted
// once at run end. Ids are never removed by normal operation.
type Ledger struct {
	ids    map[string]struct{}
	store  LedgerStore
	logger *zap.Logger
}

// LoadLedger reads the persisted dedup state through the given store. A
// store failure degrades to an empty ledger: reprocessing everything is safe
// because the verification service detects duplicates server-side, whereas
// failing the run here would be worse than the corruption itself.
func LoadLedger(ctx context.Context, store LedgerStore, logger *zap.Logger) *Ledger {
	ledger := &Ledger{
		ids:    make(map[string]struct{}),
		store:  store,
		logger: logger,
	}

	ids, err := store.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load dedup ledger, starting empty", zap.Error(err))
		return ledger
	}
	for _, id := range ids {
		if id != "" {
			ledger.ids[id] = struct{}{}
		}
	}
	return ledger
}

// Contains reports whether the message has already been finalized.
func (l *Ledger) Contains(messageID string) bool {
	_, ok := l.ids[messageID]
	return ok
}

// Add finalizes a message id. Adding an already-present id is a no-op.
func (l *Ledger) Add(messageID string) {
	l.ids[messageID] = struct{}{}
}

// Len returns the number of finalized ids.
func (l *Ledger) Len() int {
	return len(l.ids)
}

// Save persists the whole set through the store in a single round trip. It
// is called at most once per run, after all messages are processed. Ids are
// sorted so the persisted form is deterministic.
func (l *Ledger) Save(ctx context.Context) error {
	ids := make([]string, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return l.store.Save(ctx, ids)
}
