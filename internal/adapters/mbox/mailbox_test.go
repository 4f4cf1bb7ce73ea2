package mbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/crinkl/receipt-agent/internal/core"
	"github.com/crinkl/receipt-agent/internal/utils"
)

func TestMbox(t *testing.T) {
	RegisterFailHandler(Fail)

	RunSpecs(t, "Mbox Suite")
}

type testMessage struct {
	from      string
	date      time.Time
	messageID string
	subject   string
	body      string
}

func writeMbox(path string, messages []testMessage) {
	f, err := os.Create(path)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	for _, m := range messages {
		fmt.Fprintf(f, "From %s %s\n", m.from, m.date.Format(time.ANSIC))
		fmt.Fprintf(f, "From: Billing <%s>\n", m.from)
		fmt.Fprintf(f, "Date: %s\n", m.date.Format(time.RFC1123Z))
		if m.messageID != "" {
			fmt.Fprintf(f, "Message-Id: <%s>\n", m.messageID)
		}
		fmt.Fprintf(f, "Subject: %s\n", m.subject)
		fmt.Fprintf(f, "\n%s\n\n", m.body)
	}
}

var _ = Describe("Mailbox", func() {
	var (
		path    string
		mailbox *Mailbox
		query   core.SearchQuery
		ctx     context.Context

		messages []testMessage
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "mail.mbox")
		ctx = context.Background()
		query = core.SearchQuery{
			Domains:    []string{"suno.com"},
			MaxAgeDays: 14,
			MaxResults: 50,
		}
		messages = nil
	})

	JustBeforeEach(func() {
		writeMbox(path, messages)
		mailbox = NewMailbox(path, zap.NewNop(), utils.NewSnippets(zap.NewNop()))
	})

	When("the file holds a recent message from an allowed vendor", func() {
		BeforeEach(func() {
			messages = []testMessage{{
				from:      "billing@suno.com",
				date:      time.Now().Add(-24 * time.Hour),
				messageID: "receipt-1@suno.com",
				subject:   "Your Suno receipt",
				body:      "Thanks for your purchase.\nTotal: $10.99",
			}}
		})

		It("returns it as a candidate", func() {
			candidates, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(candidates).To(HaveLen(1))
			Expect(candidates[0].MessageID).To(Equal("receipt-1@suno.com"))
			Expect(candidates[0].Snippet).To(ContainSubstring("Thanks for your purchase"))
		})

		It("serves the raw content afterwards", func() {
			_, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())

			raw, err := mailbox.FetchRaw(ctx, "receipt-1@suno.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(ContainSubstring("From: Billing <billing@suno.com>"))
			Expect(string(raw)).To(ContainSubstring("Total: $10.99"))
		})

		It("serves the display headers afterwards", func() {
			_, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())

			headers, err := mailbox.FetchHeaders(ctx, "receipt-1@suno.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(headers.Subject).To(Equal("Your Suno receipt"))
			Expect(headers.From).To(ContainSubstring("billing@suno.com"))
		})
	})

	When("a sender is not on the allowlist", func() {
		BeforeEach(func() {
			messages = []testMessage{{
				from:      "offers@randomshop.example",
				date:      time.Now().Add(-24 * time.Hour),
				messageID: "promo-1@randomshop.example",
				subject:   "Big sale",
				body:      "50% off everything",
			}}
		})

		It("excludes the message", func() {
			candidates, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(candidates).To(BeEmpty())
		})
	})

	When("a message is older than the scan window", func() {
		BeforeEach(func() {
			messages = []testMessage{{
				from:      "billing@suno.com",
				date:      time.Now().AddDate(0, 0, -60),
				messageID: "old-1@suno.com",
				subject:   "Your Suno receipt",
				body:      "An old receipt",
			}}
		})

		It("excludes the message", func() {
			candidates, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(candidates).To(BeEmpty())
		})
	})

	When("a message has no Message-Id header", func() {
		BeforeEach(func() {
			messages = []testMessage{{
				from:    "billing@suno.com",
				date:    time.Now().Add(-24 * time.Hour),
				subject: "Your Suno receipt",
				body:    "Total: $5.00",
			}}
		})

		It("derives a stable content-based id", func() {
			candidates, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(candidates).To(HaveLen(1))
			Expect(candidates[0].MessageID).To(HavePrefix("content-"))

			again := NewMailbox(path, zap.NewNop(), utils.NewSnippets(zap.NewNop()))
			rerun, err := again.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(rerun[0].MessageID).To(Equal(candidates[0].MessageID))
		})
	})

	When("the file stores messages oldest first", func() {
		BeforeEach(func() {
			for _, age := range []int{10, 5, 1} {
				messages = append(messages, testMessage{
					from:      "billing@suno.com",
					date:      time.Now().AddDate(0, 0, -age),
					messageID: fmt.Sprintf("receipt-%dd@suno.com", age),
					subject:   "Your Suno receipt",
					body:      "Total: $1.00",
				})
			}
		})

		It("returns candidates newest first", func() {
			candidates, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(candidates).To(HaveLen(3))
			Expect(candidates[0].MessageID).To(Equal("receipt-1d@suno.com"))
			Expect(candidates[1].MessageID).To(Equal("receipt-5d@suno.com"))
			Expect(candidates[2].MessageID).To(Equal("receipt-10d@suno.com"))
		})

		It("drops the oldest messages at the result cap", func() {
			query.MaxResults = 2

			candidates, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(candidates).To(HaveLen(2))
			Expect(candidates[0].MessageID).To(Equal("receipt-1d@suno.com"))
			Expect(candidates[1].MessageID).To(Equal("receipt-5d@suno.com"))
		})
	})

	When("more messages match than the result cap allows", func() {
		BeforeEach(func() {
			for i := 0; i < 5; i++ {
				messages = append(messages, testMessage{
					from:      "billing@suno.com",
					date:      time.Now().Add(-24 * time.Hour),
					messageID: fmt.Sprintf("receipt-%d@suno.com", i),
					subject:   "Your Suno receipt",
					body:      "Total: $1.00",
				})
			}
			query.MaxResults = 3
		})

		It("stops at the cap", func() {
			candidates, err := mailbox.Search(ctx, query)
			Expect(err).NotTo(HaveOccurred())
			Expect(candidates).To(HaveLen(3))
		})
	})

	It("rejects unknown message ids", func() {
		_, err := mailbox.FetchRaw(ctx, "never-seen")
		Expect(err).To(HaveOccurred())

		_, err = mailbox.FetchHeaders(ctx, "never-seen")
		Expect(err).To(HaveOccurred())
	})

	It("fails when the file does not exist", func() {
		missing := NewMailbox(filepath.Join(GinkgoT().TempDir(), "absent.mbox"), zap.NewNop(), utils.NewSnippets(zap.NewNop()))
		_, err := missing.Search(ctx, query)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("senderDomain", func() {
	It("extracts the lowercased domain from a display-name address", func() {
		domain, ok := senderDomain("Billing <billing@Suno.COM>")
		Expect(ok).To(BeTrue())
		Expect(domain).To(Equal("suno.com"))
	})

	It("rejects unparseable addresses", func() {
		_, ok := senderDomain("not an address")
		Expect(ok).To(BeFalse())
	})

	It("rejects an empty From header", func() {
		_, ok := senderDomain("")
		Expect(ok).To(BeFalse())
	})
})
