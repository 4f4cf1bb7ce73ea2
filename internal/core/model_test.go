package core

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewSearchQuery", func() {
	It("lowercases and trims vendor domains", func() {
		query := NewSearchQuery([]Vendor{
			{Domain: " Suno.COM "},
			{Domain: "OpenAI.com"},
		}, 14, 50)
		Expect(query.Domains).To(Equal([]string{"suno.com", "openai.com"}))
	})

	It("deduplicates while preserving first-seen order", func() {
		query := NewSearchQuery([]Vendor{
			{Domain: "b.com"},
			{Domain: "a.com"},
			{Domain: "B.COM"},
		}, 7, 10)
		Expect(query.Domains).To(Equal([]string{"b.com", "a.com"}))
	})

	It("drops empty domains", func() {
		query := NewSearchQuery([]Vendor{
			{Domain: ""},
			{Domain: "   "},
			{Domain: "a.com"},
		}, 7, 10)
		Expect(query.Domains).To(Equal([]string{"a.com"}))
	})

	It("carries the scan window and result cap", func() {
		query := NewSearchQuery(nil, 30, 100)
		Expect(query.MaxAgeDays).To(Equal(30))
		Expect(query.MaxResults).To(Equal(int64(100)))
	})
})

var _ = Describe("VerificationResult", func() {
	It("exposes exactly the verified variant", func() {
		result := NewVerifiedResult(&VerifiedReceipt{SourceDomain: "suno.com"})

		receipt, ok := result.Verified()
		Expect(ok).To(BeTrue())
		Expect(receipt.SourceDomain).To(Equal("suno.com"))

		_, rejected := result.Rejected()
		Expect(rejected).To(BeFalse())
	})

	It("exposes exactly the rejected variant", func() {
		result := NewRejectedResult("not a billing receipt")

		reason, ok := result.Rejected()
		Expect(ok).To(BeTrue())
		Expect(reason).To(Equal("not a billing receipt"))

		_, verified := result.Verified()
		Expect(verified).To(BeFalse())
	})

	It("supplies a default rejection reason", func() {
		reason, ok := NewRejectedResult("").Rejected()
		Expect(ok).To(BeTrue())
		Expect(reason).NotTo(BeEmpty())
	})
})

var _ = Describe("SubmissionOutcome", func() {
	It("tags each constructor with its kind", func() {
		Expect(NewAcceptedOutcome("s1", "Suno", "ACCEPTED").Kind()).To(Equal(SubmissionAccepted))
		Expect(NewQueuedOutcome("suno.com").Kind()).To(Equal(SubmissionQueuedForReview))
		Expect(NewDuplicateOutcome().Kind()).To(Equal(SubmissionDuplicate))
		Expect(NewFailedOutcome("boom", false).Kind()).To(Equal(SubmissionFailed))
	})

	It("carries the permanence of a rejection", func() {
		Expect(NewFailedOutcome("malformed", true).Permanent).To(BeTrue())
		Expect(NewFailedOutcome("timeout", false).Permanent).To(BeFalse())
	})
})

var _ = Describe("RunSummary", func() {
	It("tallies each outcome independently", func() {
		summary := NewRunSummary()
		summary.RecordSubmitted()
		summary.RecordSkipped()
		summary.RecordSkipped()
		summary.RecordError()

		Expect(summary.Submitted()).To(Equal(1))
		Expect(summary.Skipped()).To(Equal(2))
		Expect(summary.Errors()).To(Equal(1))
		Expect(summary.Render()).To(Equal("submitted: 1, skipped: 2, errors: 1"))
	})
})
