package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ReceiptService drives the receipt-processing pipeline for one run:
// search, fetch, verify, decide, submit, record. Messages are processed
// sequentially in scan order; the ledger has a single writer.
type ReceiptService struct {
	mailbox   MailboxProvider
	verifier  ReceiptVerifier
	allowlist AllowlistSource
	registry  *Registry
	ledger    *Ledger
	logger    *zap.Logger

	maxAgeDays int
	maxResults int64
	preview    bool
}

// NewReceiptService creates a pipeline service. With preview enabled the
// pipeline classifies and logs but never submits, and leaves would-submit
// messages out of the ledger.
func NewReceiptService(
	mailbox MailboxProvider,
	verifier ReceiptVerifier,
	allowlist AllowlistSource,
	registry *Registry,
	ledger *Ledger,
	logger *zap.Logger,
	maxAgeDays int,
	maxResults int64,
	preview bool,
) *ReceiptService {
	return &ReceiptService{
		mailbox:    mailbox,
		verifier:   verifier,
		allowlist:  allowlist,
		registry:   registry,
		ledger:     ledger,
		logger:     logger,
		maxAgeDays: maxAgeDays,
		maxResults: maxResults,
		preview:    preview,
	}
}

// Run executes one full pipeline pass. Only allowlist and search failures
// are fatal; a fault on one message never aborts the rest. The ledger is
// persisted exactly once at the end, and a persistence failure is returned
// alongside the summary without undoing any submissions already made.
func (s *ReceiptService) Run(ctx context.Context) (*RunSummary, error) {
	summary := NewRunSummary()

	vendors, err := s.allowlist.Vendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading vendor allowlist: %w", err)
	}
	if len(vendors) == 0 {
		s.logger.Info("No vendors are currently approved, nothing to scan")
		return summary, nil
	}
	s.logger.Info("Loaded vendor allowlist", zap.Int("vendors", len(vendors)))

	query := NewSearchQuery(vendors, s.maxAgeDays, s.maxResults)
	candidates, err := s.mailbox.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching mailbox: %w", err)
	}
	s.logger.Info("Mailbox search complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("max_age_days", s.maxAgeDays))

	for _, candidate := range candidates {
		if s.ledger.Contains(candidate.MessageID) {
			s.logger.Debug("Skipping already-handled message",
				zap.String("message_id", candidate.MessageID))
			summary.RecordSkipped()
			continue
		}
		s.processMessage(ctx, candidate, summary)
	}

	if err := s.ledger.Save(ctx); err != nil {
		return summary, fmt.Errorf("saving dedup ledger: %w", err)
	}

	s.logger.Info("Run complete", zap.String("summary", summary.Render()))
	return summary, nil
}

// processMessage runs the per-message state machine. Every fault is absorbed
// here: transient failures count as errors and leave the message
// un-finalized so it is retried on a future run, while definitive
// classifications are finalized into the ledger even when no submission
// happens.
func (s *ReceiptService) processMessage(ctx context.Context, candidate CandidateEmail, summary *RunSummary) {
	logger := s.logger.With(zap.String("message_id", candidate.MessageID))

	if headers, err := s.mailbox.FetchHeaders(ctx, candidate.MessageID); err == nil {
		logger.Info("Processing message",
			zap.String("subject", headers.Subject),
			zap.String("from", headers.From),
			zap.String("date", headers.Date))
	} else {
		logger.Info("Processing message", zap.String("snippet", candidate.Snippet))
	}

	// Raw content stays in memory for the duration of this call and is
	// never written to stable storage.
	raw, err := s.mailbox.FetchRaw(ctx, candidate.MessageID)
	if err != nil {
		logger.Error("Failed to fetch message content", zap.Error(err))
		summary.RecordError()
		return
	}

	result, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		logger.Error("Verification request failed", zap.Error(err))
		summary.RecordError()
		return
	}

	if reason, rejected := result.Rejected(); rejected {
		logger.Info("Skipping non-receipt message", zap.String("reason", reason))
		s.ledger.Add(candidate.MessageID)
		summary.RecordSkipped()
		return
	}

	receipt, _ := result.Verified()
	logger.Info("Verified receipt",
		zap.Bool("dkim_passed", receipt.AuthenticityPassed),
		zap.String("domain", receipt.SourceDomain),
		zap.Int64("amount_cents", receipt.AmountCents),
		zap.String("currency", receipt.Currency),
		zap.String("date", receipt.OccurredOn),
		zap.String("invoice_id", receipt.InvoiceID))

	// Local classification is display-only. The remote verdict is the single
	// source of truth for authenticity and receipt validity.
	parser := s.registry.Resolve(receipt.SourceDomain)
	if parser.Name() != GenericParserName {
		logger.Info("Matched vendor parser", zap.String("parser", parser.Name()))
		if parsed := parser.Parse(string(raw), receipt.Subject); parsed != nil {
			logger.Debug("Local parse",
				zap.Int64("amount_cents", parsed.AmountCents),
				zap.String("currency", parsed.Currency),
				zap.String("invoice_id", parsed.InvoiceID))
		}
	}

	if !receipt.AuthenticityPassed {
		logger.Info("Skipping message: DKIM verification failed",
			zap.String("domain", receipt.SourceDomain))
		s.ledger.Add(candidate.MessageID)
		summary.RecordSkipped()
		return
	}

	if s.preview {
		// Not finalized: the message stays eligible for a real submission
		// on a later run.
		logger.Info("Preview: would submit receipt",
			zap.String("domain", receipt.SourceDomain),
			zap.Int64("amount_cents", receipt.AmountCents))
		return
	}

	outcome, err := s.verifier.Submit(ctx, raw)
	if err != nil {
		logger.Error("Submission request failed", zap.Error(err))
		summary.RecordError()
		return
	}

	switch outcome.Kind() {
	case SubmissionAccepted:
		logger.Info("Receipt submitted",
			zap.String("submission_id", outcome.SubmissionID),
			zap.String("store", outcome.Store),
			zap.String("status", outcome.FinalStatus))
		s.ledger.Add(candidate.MessageID)
		summary.RecordSubmitted()
	case SubmissionQueuedForReview:
		logger.Info("Vendor queued for admin review",
			zap.String("domain", outcome.Domain))
		s.ledger.Add(candidate.MessageID)
		summary.RecordSkipped()
	case SubmissionDuplicate:
		logger.Info("Receipt already submitted server-side")
		s.ledger.Add(candidate.MessageID)
		summary.RecordSkipped()
	case SubmissionFailed:
		logger.Error("Submission rejected",
			zap.String("reason", outcome.Reason),
			zap.Bool("permanent", outcome.Permanent))
		if outcome.Permanent {
			s.ledger.Add(candidate.MessageID)
		}
		summary.RecordError()
	}
}
