package mbox

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// charsetReader decodes non-UTF-8 header charsets (e.g. ISO-2022-JP) to
// UTF-8. Unknown charsets pass through untouched rather than failing the
// whole header.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	if charset == "" {
		return input, nil
	}
	enc, err := ianaindex.IANA.Encoding(strings.ToLower(charset))
	if err != nil || enc == nil {
		return input, nil
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
