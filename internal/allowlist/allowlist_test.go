package allowlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/crinkl/receipt-agent/internal/core"
)

func TestAllowlist(t *testing.T) {
	RegisterFailHandler(Fail)

	RunSpecs(t, "Allowlist Suite")
}

type stubVerifier struct {
	vendors []core.Vendor
	err     error
}

func (s *stubVerifier) AllowedVendors(ctx context.Context) ([]core.Vendor, error) {
	return s.vendors, s.err
}

func (s *stubVerifier) Verify(ctx context.Context, raw []byte) (*core.VerificationResult, error) {
	return nil, errors.New("not used")
}

func (s *stubVerifier) Submit(ctx context.Context, raw []byte) (*core.SubmissionOutcome, error) {
	return nil, errors.New("not used")
}

var _ = Describe("RemoteSource", func() {
	It("returns the service's vendor list", func() {
		verifier := &stubVerifier{vendors: []core.Vendor{
			{Domain: "suno.com", Name: "Suno"},
		}}
		source := NewRemoteSource(verifier, zap.NewNop())

		vendors, err := source.Vendors(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(vendors).To(Equal(verifier.vendors))
	})

	It("propagates service errors", func() {
		verifier := &stubVerifier{err: errors.New("service unavailable")}
		source := NewRemoteSource(verifier, zap.NewNop())

		_, err := source.Vendors(context.Background())
		Expect(err).To(MatchError(verifier.err))
	})
})

var _ = Describe("FileSource", func() {
	var (
		dir  string
		path string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		path = filepath.Join(dir, "allowlist.json")
	})

	writeFile := func(content string) {
		Expect(os.WriteFile(path, []byte(content), 0600)).To(Succeed())
	}

	It("loads a versioned allowlist file", func() {
		writeFile(`{
			"version": 2,
			"updated": "2026-08-12",
			"vendors": [
				{"domain": "Suno.com", "name": "Suno", "category": "music"},
				{"domain": "openai.com", "name": "OpenAI", "category": "ai"}
			]
		}`)
		source := NewFileSource(path, zap.NewNop())

		vendors, err := source.Vendors(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(vendors).To(Equal([]core.Vendor{
			{Domain: "suno.com", Name: "Suno", Category: "music"},
			{Domain: "openai.com", Name: "OpenAI", Category: "ai"},
		}))
	})

	It("drops records without a domain", func() {
		writeFile(`{
			"version": 1,
			"vendors": [
				{"domain": "", "name": "Nameless"},
				{"domain": "   ", "name": "Blank"},
				{"domain": "suno.com", "name": "Suno"}
			]
		}`)
		source := NewFileSource(path, zap.NewNop())

		vendors, err := source.Vendors(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(vendors).To(HaveLen(1))
		Expect(vendors[0].Domain).To(Equal("suno.com"))
	})

	It("fails on a missing file", func() {
		source := NewFileSource(filepath.Join(dir, "absent.json"), zap.NewNop())

		_, err := source.Vendors(context.Background())
		Expect(err).To(HaveOccurred())
	})

	It("fails on malformed JSON", func() {
		writeFile(`{"vendors": [`)
		source := NewFileSource(path, zap.NewNop())

		_, err := source.Vendors(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("parsing allowlist file"))
	})

	It("reads the allowlist shipped with the agent", func() {
		source := NewFileSource(filepath.Join("..", "..", "vendors", "allowlist.json"), zap.NewNop())

		vendors, err := source.Vendors(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(vendors).NotTo(BeEmpty())
	})
})
