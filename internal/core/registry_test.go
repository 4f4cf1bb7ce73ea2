package core

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubParser struct {
	name    string
	domains []string
	parsed  *ParsedReceipt
}

func (p stubParser) Domains() []string { return p.domains }

func (p stubParser) Name() string { return p.name }

func (p stubParser) Parse(body, subject string) *ParsedReceipt { return p.parsed }

var _ = Describe("Registry", func() {
	var registry *Registry

	BeforeEach(func() {
		registry = NewRegistry()
	})

	It("resolves a registered domain to its parser", func() {
		registry.Register(stubParser{name: "suno", domains: []string{"suno.com", "suno.ai"}})

		Expect(registry.Resolve("suno.ai").Name()).To(Equal("suno"))
	})

	It("matches domains case-insensitively", func() {
		registry.Register(stubParser{name: "suno", domains: []string{"suno.com"}})

		Expect(registry.Resolve("SUNO.COM").Name()).To(Equal("suno"))
	})

	It("keeps the earlier registration when domains overlap", func() {
		registry.Register(stubParser{name: "first", domains: []string{"suno.com"}})
		registry.Register(stubParser{name: "second", domains: []string{"suno.com"}})

		Expect(registry.Resolve("suno.com").Name()).To(Equal("first"))
	})

	It("falls back to the generic parser for unknown domains", func() {
		registry.Register(stubParser{name: "suno", domains: []string{"suno.com"}})

		Expect(registry.Resolve("unknown.example").Name()).To(Equal(GenericParserName))
		Expect(registry.Resolve("").Name()).To(Equal(GenericParserName))
	})

	It("falls back when nothing is registered", func() {
		parser := registry.Resolve("anything.com")
		Expect(parser.Name()).To(Equal(GenericParserName))
	})

	It("never produces a local parse through the fallback", func() {
		parser := registry.Resolve("anything.com")
		Expect(parser.Parse("Total: $10.00", "Your receipt")).To(BeNil())
		Expect(parser.Parse("", "")).To(BeNil())
	})
})
