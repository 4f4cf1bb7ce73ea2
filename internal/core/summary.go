package core

import "fmt"

// RunSummary tallies per-message outcomes for one run. It carries no
// business logic; it exists to decouple reporting from the pipeline's
// control flow.
type RunSummary struct {
	submitted int
	skipped   int
	errors    int
}

// NewRunSummary creates an empty summary.
func NewRunSummary() *RunSummary {
	return &RunSummary{}
}

// RecordSubmitted counts an accepted reward submission.
func (s *RunSummary) RecordSubmitted() { s.submitted++ }

// RecordSkipped counts a message that was handled without a submission:
// already finalized, not a receipt, authenticity failure, queued for review,
// or a server-detected duplicate.
func (s *RunSummary) RecordSkipped() { s.skipped++ }

// RecordError counts a message left un-finalized due to a fault.
func (s *RunSummary) RecordError() { s.errors++ }

// Submitted returns the accepted submission count.
func (s *RunSummary) Submitted() int { return s.submitted }

// Skipped returns the skipped count.
func (s *RunSummary) Skipped() int { return s.skipped }

// Errors returns the error count.
func (s *RunSummary) Errors() int { return s.errors }

// Render formats the tally for human consumption.
func (s *RunSummary) Render() string {
	return fmt.Sprintf("submitted: %d, skipped: %d, errors: %d", s.submitted, s.skipped, s.errors)
}
