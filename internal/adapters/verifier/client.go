package verifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/crinkl/receipt-agent/internal/core"
	"go.uber.org/zap"
)

const (
	allowedVendorsPath = "/api/agent/allowed-vendors"
	verifyPath         = "/api/agent/verify-email-receipt"
	submitPath         = "/api/agent/submit-email-receipt"

	statusQueuedForReview = "QUEUED_FOR_REVIEW"
)

// Client talks to the receipt verification/reward service. Only the eml
// content is sent; no mailbox access is shared with the service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a verification service client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// AllowedVendors fetches the server-approved vendor allowlist.
func (c *Client) AllowedVendors(ctx context.Context) ([]core.Vendor, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+allowedVendorsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("building allowed-vendors request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching allowed vendors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching allowed vendors: unexpected status %s", resp.Status)
	}

	var body allowedVendorsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding allowed-vendors response: %w", err)
	}

	vendors := make([]core.Vendor, 0, len(body.Data.Vendors))
	for _, v := range body.Data.Vendors {
		vendors = append(vendors, core.Vendor{
			Domain:   v.Domain,
			Name:     v.DisplayName,
			Category: v.Category,
		})
	}
	return vendors, nil
}

// Verify checks a raw email's authenticity without submitting it. A
// structurally rejected email comes back as a rejected result, not an error;
// errors are reserved for transport-level failures that should be retried.
func (c *Client) Verify(ctx context.Context, raw []byte) (*core.VerificationResult, error) {
	var body verifyResponse
	if err := c.postEml(ctx, verifyPath, raw, &body); err != nil {
		return nil, err
	}

	if !body.Success || body.Data == nil {
		return core.NewRejectedResult(body.Error), nil
	}

	receipt := &core.VerifiedReceipt{
		AuthenticityPassed: body.Data.DkimVerified,
		SourceDomain:       body.Data.DkimDomain,
		AmountCents:        body.Data.TotalCents,
		Currency:           body.Data.Currency,
		OccurredOn:         body.Data.Date,
		Subject:            body.Data.Subject,
	}
	if body.Data.InvoiceID != nil {
		receipt.InvoiceID = *body.Data.InvoiceID
	}
	for _, item := range body.Data.LineItems {
		receipt.LineItems = append(receipt.LineItems, core.LineItem{
			Description: item.Description,
			AmountCents: item.AmountCents,
		})
	}
	return core.NewVerifiedResult(receipt), nil
}

// Submit sends a verified receipt for reward processing and maps the
// service's reply onto a tagged outcome. A rejection whose error text the
// agent does not recognize stays non-permanent so the message is retried on
// a later run.
func (c *Client) Submit(ctx context.Context, raw []byte) (*core.SubmissionOutcome, error) {
	var body submitResponse
	if err := c.postEml(ctx, submitPath, raw, &body); err != nil {
		return nil, err
	}

	if body.Status == statusQueuedForReview {
		return core.NewQueuedOutcome(body.Domain), nil
	}
	if body.Success && body.Data != nil {
		return core.NewAcceptedOutcome(body.Data.SubmissionID, body.Data.Store, body.Data.Status), nil
	}
	if strings.Contains(body.Error, "already been submitted") {
		return core.NewDuplicateOutcome(), nil
	}

	permanent := strings.Contains(strings.ToLower(body.Error), "malformed")
	return core.NewFailedOutcome(body.Error, permanent), nil
}

// postEml sends a base64-encoded eml to an agent endpoint and decodes the
// JSON reply. The service encodes rejections in the JSON body rather than
// the HTTP status, so any well-formed reply is decoded regardless of status.
func (c *Client) postEml(ctx context.Context, path string, raw []byte, out interface{}) error {
	payload, err := json.Marshal(emlRequest{Eml: base64.StdEncoding.EncodeToString(raw)})
	if err != nil {
		return fmt.Errorf("encoding eml payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s (status %s): %w", path, resp.Status, err)
	}

	c.logger.Debug("Verification service call complete",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("eml_bytes", len(raw)))
	return nil
}
