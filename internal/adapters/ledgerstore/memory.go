package ledgerstore

import (
	"context"
	"sync"
)

// MemoryStore keeps the ledger in memory only. Nothing survives the
// process; it exists for tests and throwaway runs.
type MemoryStore struct {
	mu  sync.Mutex
	ids []string
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored ids.
func (s *MemoryStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ids...), nil
}

// Save replaces the stored ids with a copy of the given slice.
func (s *MemoryStore) Save(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append([]string(nil), ids...)
	return nil
}
