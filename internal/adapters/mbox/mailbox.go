package mbox

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/mail"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/crinkl/receipt-agent/internal/core"
	"github.com/crinkl/receipt-agent/internal/utils"
	"github.com/emersion/go-mbox"
	"go.uber.org/zap"
)

const snippetMaxBytes = 120

// Mailbox is an offline mailbox provider reading a local mbox file, e.g. a
// Google Takeout export. It exists mainly for preview runs without mailbox
// credentials. Message content is held in memory only.
type Mailbox struct {
	path     string
	logger   *zap.Logger
	snippets *utils.Snippets

	raw     map[string][]byte
	headers map[string]*core.MessageHeaders
}

// NewMailbox creates an mbox-backed mailbox provider.
func NewMailbox(path string, logger *zap.Logger, snippets *utils.Snippets) *Mailbox {
	return &Mailbox{
		path:     path,
		logger:   logger,
		snippets: snippets,
		raw:      make(map[string][]byte),
		headers:  make(map[string]*core.MessageHeaders),
	}
}

// Search streams the mbox file and returns messages whose sender domain is
// in the query's allowlist and whose date falls within the recency bound.
// Matches come back newest first regardless of file order, so the result cap
// drops the oldest messages.
func (m *Mailbox) Search(ctx context.Context, query core.SearchQuery) ([]core.CandidateEmail, error) {
	f, err := os.Open(m.path)
	if err != nil {
		return nil, fmt.Errorf("opening mbox file: %w", err)
	}
	defer f.Close()

	domains := make(map[string]struct{}, len(query.Domains))
	for _, d := range query.Domains {
		domains[strings.ToLower(d)] = struct{}{}
	}

	var cutoff time.Time
	if query.MaxAgeDays > 0 {
		cutoff = time.Now().AddDate(0, 0, -query.MaxAgeDays)
	}

	decoder := &mime.WordDecoder{CharsetReader: charsetReader}
	reader := mbox.NewReader(f)

	type match struct {
		candidate core.CandidateEmail
		date      time.Time
	}

	var matches []match
	for {
		msgReader, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading mbox message: %w", err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return nil, fmt.Errorf("reading mbox message: %w", err)
		}

		msg, err := mail.ReadMessage(bytes.NewReader(raw))
		if err != nil {
			m.logger.Debug("Skipping unparseable mbox entry", zap.Error(err))
			continue
		}

		domain, ok := senderDomain(msg.Header.Get("From"))
		if !ok {
			continue
		}
		if _, allowed := domains[domain]; !allowed {
			continue
		}

		// Messages without a parseable date keep the zero time: they pass the
		// recency bound but sort behind every dated message.
		date, _ := msg.Header.Date()
		if !cutoff.IsZero() && !date.IsZero() && date.Before(cutoff) {
			continue
		}

		id := messageID(msg.Header.Get("Message-Id"), raw)
		subject := msg.Header.Get("Subject")
		if decoded, err := decoder.DecodeHeader(subject); err == nil {
			subject = decoded
		}

		m.raw[id] = raw
		m.headers[id] = &core.MessageHeaders{
			Subject: subject,
			From:    msg.Header.Get("From"),
			Date:    msg.Header.Get("Date"),
		}

		matches = append(matches, match{
			candidate: core.CandidateEmail{
				MessageID: id,
				Snippet:   m.snippet(msg.Body),
			},
			date: date,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].date.After(matches[j].date)
	})
	if query.MaxResults > 0 && int64(len(matches)) > query.MaxResults {
		matches = matches[:query.MaxResults]
	}

	candidates := make([]core.CandidateEmail, 0, len(matches))
	for _, entry := range matches {
		candidates = append(candidates, entry.candidate)
	}

	m.logger.Debug("Scanned mbox file",
		zap.String("path", m.path),
		zap.Int("matches", len(candidates)))
	return candidates, nil
}

// FetchRaw returns the in-memory content of a message found by Search.
func (m *Mailbox) FetchRaw(ctx context.Context, messageID string) ([]byte, error) {
	raw, ok := m.raw[messageID]
	if !ok {
		return nil, fmt.Errorf("unknown message id %q", messageID)
	}
	return raw, nil
}

// FetchHeaders returns the display headers of a message found by Search.
func (m *Mailbox) FetchHeaders(ctx context.Context, messageID string) (*core.MessageHeaders, error) {
	headers, ok := m.headers[messageID]
	if !ok {
		return nil, fmt.Errorf("unknown message id %q", messageID)
	}
	return headers, nil
}

// senderDomain extracts the lowercased domain of the From address.
func senderDomain(from string) (string, bool) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", false
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || at == len(addr.Address)-1 {
		return "", false
	}
	return strings.ToLower(addr.Address[at+1:]), true
}

// messageID prefers the Message-Id header; messages without one get a stable
// content-derived id so reruns still dedup correctly.
func messageID(header string, raw []byte) string {
	id := strings.Trim(strings.TrimSpace(header), "<>")
	if id != "" {
		return id
	}
	sum := sha256.Sum256(raw)
	return "content-" + hex.EncodeToString(sum[:8])
}

// snippet builds a short one-line preview from the start of the body.
func (m *Mailbox) snippet(body io.Reader) string {
	buf := make([]byte, 512)
	n, _ := io.ReadFull(body, buf)
	return m.snippets.Clean(string(buf[:n]), snippetMaxBytes)
}
