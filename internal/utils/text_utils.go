package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Snippets prepares short, log-safe previews of message text.
type Snippets struct {
	logger *zap.Logger
}

// NewSnippets creates a Snippets helper.
func NewSnippets(logger *zap.Logger) *Snippets {
	return &Snippets{logger: logger}
}

// Truncate safely truncates text to the given maximum byte size, keeping the
// result valid UTF-8.
func (s *Snippets) Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	s.logger.Debug("Snippet truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)))
	return truncated + "…"
}

// SanitizeUTF8 drops invalid UTF-8 sequences from the string.
func (s *Snippets) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				continue
			}
		}
		result = append(result, r)
	}
	return string(result)
}

// Clean collapses whitespace, sanitizes and truncates text into a one-line
// preview suitable for log output.
func (s *Snippets) Clean(text string, maxSize int) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	return s.Truncate(s.SanitizeUTF8(collapsed), maxSize)
}
