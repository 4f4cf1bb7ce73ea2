package core

import (
	"context"
)

// MailboxProvider defines the interface for searching and reading a mailbox.
// Raw message content is held in memory only and must never be written to
// stable storage.
type MailboxProvider interface {
	// Search returns candidate messages matching the query, newest first.
	Search(ctx context.Context, query SearchQuery) ([]CandidateEmail, error)

	// FetchRaw retrieves the full raw message content (RFC 5322 bytes).
	FetchRaw(ctx context.Context, messageID string) ([]byte, error)

	// FetchHeaders retrieves the display headers for a message.
	FetchHeaders(ctx context.Context, messageID string) (*MessageHeaders, error)
}

// ReceiptVerifier defines the interface to the remote verification/reward
// service. The service is the sole authority on authenticity and extraction.
type ReceiptVerifier interface {
	// AllowedVendors fetches the server-approved vendor allowlist.
	AllowedVendors(ctx context.Context) ([]Vendor, error)

	// Verify checks a raw email's authenticity without submitting it.
	Verify(ctx context.Context, raw []byte) (*VerificationResult, error)

	// Submit sends a verified receipt for reward processing.
	Submit(ctx context.Context, raw []byte) (*SubmissionOutcome, error)
}

// AllowlistSource yields the vendor allowlist, read once at startup.
type AllowlistSource interface {
	Vendors(ctx context.Context) ([]Vendor, error)
}

// LedgerStore persists the dedup ledger between runs.
type LedgerStore interface {
	// Load reads the persisted message ids. Missing or unreadable state
	// degrades to an empty list, not an error, so a corrupt ledger never
	// fails the run.
	Load(ctx context.Context) ([]string, error)

	// Save atomically replaces the persisted state with the given ids.
	Save(ctx context.Context, ids []string) error
}

// VendorParser recognizes receipt emails from a fixed set of domains and
// optionally extracts structured data from them locally. Parsers are
// registered once at startup and never mutated afterward.
type VendorParser interface {
	// Domains lists the sender domains this parser handles.
	Domains() []string

	// Name is the parser's display name.
	Name() string

	// Parse extracts receipt data from an email body. A nil result means no
	// local parse is available; the verification service extracts
	// authoritatively either way.
	Parse(body, subject string) *ParsedReceipt
}
