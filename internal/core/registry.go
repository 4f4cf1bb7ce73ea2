package core

import "strings"

// GenericParserName is the display name of the fallback parser.
const GenericParserName = "generic"

// Registry holds the vendor parsers for a run. It is built once at startup
// and read-only while the pipeline runs; there is no ambient global lookup.
type Registry struct {
	parsers  []VendorParser
	fallback VendorParser
}

// NewRegistry creates a registry with only the generic fallback installed.
func NewRegistry() *Registry {
	return &Registry{fallback: genericParser{}}
}

// Register appends a parser. If two parsers claim the same domain, the
// earlier registration wins.
func (r *Registry) Register(parser VendorParser) {
	r.parsers = append(r.parsers, parser)
}

// Resolve returns the first registered parser handling the given domain,
// falling back to the generic parser. A fallback hit is a legitimate steady
// state: the verification service parses authoritatively, so most domains
// have no local parser.
func (r *Registry) Resolve(domain string) VendorParser {
	for _, parser := range r.parsers {
		for _, d := range parser.Domains() {
			if strings.EqualFold(d, domain) {
				return parser
			}
		}
	}
	return r.fallback
}

// genericParser is the fallback for domains without a local parser. Its
// Parse always reports "no local parse available".
type genericParser struct{}

func (genericParser) Domains() []string { return nil }

func (genericParser) Name() string { return GenericParserName }

func (genericParser) Parse(body, subject string) *ParsedReceipt { return nil }
