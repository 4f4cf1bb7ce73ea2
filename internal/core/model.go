package core

import "strings"

// Vendor is one allow-listed receipt source. The allowlist constrains the
// mailbox search only; the verification service remains the authority on
// whether a given email is a genuine receipt.
type Vendor struct {
	Domain   string
	Name     string
	Category string
}

// CandidateEmail is a single mailbox search hit. Ephemeral, never persisted.
type CandidateEmail struct {
	MessageID string
	Snippet   string
}

// MessageHeaders holds the display headers of a message.
type MessageHeaders struct {
	Subject string
	From    string
	Date    string
}

// SearchQuery describes one mailbox search. Each mailbox provider renders it
// into its native query form.
type SearchQuery struct {
	Domains    []string
	MaxAgeDays int
	MaxResults int64
}

// NewSearchQuery builds a query from the vendor allowlist. Domains are
// lowercased and deduplicated; insertion order is preserved.
func NewSearchQuery(vendors []Vendor, maxAgeDays int, maxResults int64) SearchQuery {
	seen := make(map[string]struct{}, len(vendors))
	domains := make([]string, 0, len(vendors))
	for _, v := range vendors {
		domain := strings.ToLower(strings.TrimSpace(v.Domain))
		if domain == "" {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
	}
	return SearchQuery{
		Domains:    domains,
		MaxAgeDays: maxAgeDays,
		MaxResults: maxResults,
	}
}

// LineItem is a single entry on a receipt.
type LineItem struct {
	Description string
	AmountCents int64
}

// VerifiedReceipt is the verification service's extraction of a receipt
// email. Amounts are integer cents; no floating currency anywhere.
type VerifiedReceipt struct {
	AuthenticityPassed bool
	SourceDomain       string
	AmountCents        int64
	Currency           string
	OccurredOn         string
	InvoiceID          string
	Subject            string
	LineItems          []LineItem
}

// VerificationResult is the tagged outcome of a verify call. Exactly one of
// the verified/rejected variants is populated; the constructors are the only
// way to build one.
type VerificationResult struct {
	receipt *VerifiedReceipt
	reason  string
}

// NewVerifiedResult wraps a successful extraction.
func NewVerifiedResult(receipt *VerifiedReceipt) *VerificationResult {
	return &VerificationResult{receipt: receipt}
}

// NewRejectedResult wraps a definitive rejection (not a receipt,
// unparseable, etc).
func NewRejectedResult(reason string) *VerificationResult {
	if reason == "" {
		reason = "rejected by verification service"
	}
	return &VerificationResult{reason: reason}
}

// Verified returns the extracted receipt when the service accepted the email.
func (r *VerificationResult) Verified() (*VerifiedReceipt, bool) {
	return r.receipt, r.receipt != nil
}

// Rejected returns the rejection reason when the service turned the email
// away.
func (r *VerificationResult) Rejected() (string, bool) {
	if r.receipt != nil {
		return "", false
	}
	return r.reason, true
}

// SubmissionKind tags a SubmissionOutcome variant.
type SubmissionKind int

const (
	SubmissionAccepted SubmissionKind = iota
	SubmissionQueuedForReview
	SubmissionDuplicate
	SubmissionFailed
)

// SubmissionOutcome is the tagged result of a submit call. Use the
// constructors and switch exhaustively on Kind.
type SubmissionOutcome struct {
	kind SubmissionKind

	SubmissionID string
	Store        string
	FinalStatus  string
	Domain       string
	Reason       string
	Permanent    bool
}

// NewAcceptedOutcome records a reward submission the service accepted.
func NewAcceptedOutcome(submissionID, store, finalStatus string) *SubmissionOutcome {
	return &SubmissionOutcome{
		kind:         SubmissionAccepted,
		SubmissionID: submissionID,
		Store:        store,
		FinalStatus:  finalStatus,
	}
}

// NewQueuedOutcome records a vendor recognized server-side but not yet
// approved. The message is fully handled from the agent's perspective.
func NewQueuedOutcome(domain string) *SubmissionOutcome {
	return &SubmissionOutcome{kind: SubmissionQueuedForReview, Domain: domain}
}

// NewDuplicateOutcome records a server-detected duplicate submission.
func NewDuplicateOutcome() *SubmissionOutcome {
	return &SubmissionOutcome{kind: SubmissionDuplicate}
}

// NewFailedOutcome records an explicit rejection. Permanent rejections are
// finalized so they are not retried; ambiguous ones stay eligible for retry.
func NewFailedOutcome(reason string, permanent bool) *SubmissionOutcome {
	return &SubmissionOutcome{kind: SubmissionFailed, Reason: reason, Permanent: permanent}
}

// Kind returns the populated variant.
func (o *SubmissionOutcome) Kind() SubmissionKind {
	return o.kind
}

// ParsedReceipt is the optional output of a local vendor parser. It is used
// for display and logging only and never gates the submission decision.
type ParsedReceipt struct {
	AmountCents int64
	Currency    string
	Date        string
	InvoiceID   string
	LineItems   []LineItem
}
