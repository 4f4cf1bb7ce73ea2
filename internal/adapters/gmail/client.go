package gmail

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/crinkl/receipt-agent/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	user = "me"

	// The out-of-band flow: the user authorizes in a browser and pastes the
	// redirect URL back. Only the readonly scope is ever requested.
	redirectURI = "http://localhost"
)

// Client is the Gmail mailbox provider. Message content is downloaded to
// memory and never written to disk.
type Client struct {
	srv    *gmailapi.Service
	logger *zap.Logger
}

// NewClient creates an authenticated Gmail client, running the OAuth flow on
// first use and caching the token at tokenPath.
func NewClient(ctx context.Context, clientID, clientSecret, tokenPath string, logger *zap.Logger) (*Client, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURI,
		Scopes:       []string{gmailapi.GmailReadonlyScope},
	}

	token, err := tokenFromFile(tokenPath)
	if err != nil {
		token, err = tokenFromWeb(ctx, oauthConfig)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, token); err != nil {
			return nil, err
		}
		logger.Info("Gmail credentials saved", zap.String("path", tokenPath))
	}

	srv, err := gmailapi.NewService(ctx, option.WithHTTPClient(oauthConfig.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv, logger: logger}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Println("\n--- Gmail Authorization ---")
	fmt.Println("1. Open this URL in your browser:")
	fmt.Printf("\n   %s\n\n", authURL)
	fmt.Println("2. Authorize the app. You'll be redirected to a page that won't load.")
	fmt.Println("3. Paste the full redirect URL (or just the code) below.")
	fmt.Print("\nPaste here: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}
	code := extractAuthCode(strings.TrimSpace(line))

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

// extractAuthCode accepts either a bare code or the full pasted redirect URL.
func extractAuthCode(input string) string {
	if !strings.HasPrefix(input, "http") {
		return input
	}
	parsed, err := url.Parse(input)
	if err != nil {
		return input
	}
	if code := parsed.Query().Get("code"); code != "" {
		return code
	}
	return input
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("saving oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// Search lists messages matching the query.
func (c *Client) Search(ctx context.Context, query core.SearchQuery) ([]core.CandidateEmail, error) {
	q := renderQuery(query)
	c.logger.Debug("Searching Gmail", zap.String("query", q))

	resp, err := c.srv.Users.Messages.List(user).
		Q(q).
		MaxResults(query.MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	candidates := make([]core.CandidateEmail, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		candidates = append(candidates, core.CandidateEmail{
			MessageID: m.Id,
			Snippet:   m.Snippet,
		})
	}
	return candidates, nil
}

// renderQuery turns a structured query into Gmail search syntax:
// (from:@a.com OR from:@b.com) newer_than:14d
func renderQuery(query core.SearchQuery) string {
	clauses := make([]string, 0, len(query.Domains))
	for _, domain := range query.Domains {
		clauses = append(clauses, "from:@"+domain)
	}
	return fmt.Sprintf("(%s) newer_than:%dd", strings.Join(clauses, " OR "), query.MaxAgeDays)
}

// FetchRaw downloads the full raw message, in memory only.
func (c *Client) FetchRaw(ctx context.Context, messageID string) ([]byte, error) {
	msg, err := c.srv.Users.Messages.Get(user, messageID).
		Format("raw").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetching raw message %s: %w", messageID, err)
	}

	// Gmail returns URL-safe base64.
	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(msg.Raw)
		if err != nil {
			return nil, fmt.Errorf("decoding raw message %s: %w", messageID, err)
		}
	}
	return raw, nil
}

// FetchHeaders retrieves the display headers for a message.
func (c *Client) FetchHeaders(ctx context.Context, messageID string) (*core.MessageHeaders, error) {
	msg, err := c.srv.Users.Messages.Get(user, messageID).
		Format("metadata").
		MetadataHeaders("Subject", "From", "Date").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetching headers for %s: %w", messageID, err)
	}

	headers := &core.MessageHeaders{Subject: "(no subject)"}
	if msg.Payload == nil {
		return headers, nil
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			headers.Subject = h.Value
		case "From":
			headers.From = h.Value
		case "Date":
			headers.Date = h.Value
		}
	}
	return headers, nil
}
