// Package webhook fetches the automation webhook payload and normalizes it
// into appointments, expenses and the AI insights summary.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxBodySize bounds how much of a webhook response is read.
const DefaultMaxBodySize = 10 << 20

// Options configures a Client.
type Options struct {
	URL        string
	RefreshURL string
	Location   *time.Location
	Timeout    time.Duration

	// MaxBodySize defaults to DefaultMaxBodySize. Larger responses fail
	// with a transport error.
	MaxBodySize int64
}

// Client fetches and normalizes webhook data.
type Client struct {
	url        string
	refreshURL string
	httpClient *http.Client
	maxBody    int64
	normalizer *Normalizer
	log        *zap.Logger
}

// NewClient creates a new webhook client.
func NewClient(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBody := opts.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	return &Client{
		url:        opts.URL,
		refreshURL: opts.RefreshURL,
		httpClient: &http.Client{Timeout: timeout},
		maxBody:    maxBody,
		normalizer: &Normalizer{Location: opts.Location, Log: log},
		log:        log,
	}
}

// Configured reports whether a data webhook URL is set.
func (c *Client) Configured() bool {
	return c.url != ""
}

// RefreshConfigured reports whether a refresh webhook URL is set.
func (c *Client) RefreshConfigured() bool {
	return c.refreshURL != ""
}

// FetchAndNormalize downloads the webhook payload and normalizes it.
// Errors are always *FetchError.
func (c *Client) FetchAndNormalize(ctx context.Context) (*Result, error) {
	if c.url == "" {
		return nil, configError("WEBHOOK_URL is not set")
	}

	body, err := c.get(ctx, c.url)
	if err != nil {
		return nil, err
	}

	items, err := decodeArray(body)
	if err != nil {
		return nil, err
	}

	res := c.normalizer.Normalize(items)
	c.log.Debug("webhook payload normalized",
		zap.Int("elements", len(items)),
		zap.Int("appointments", len(res.Appointments)),
		zap.Int("expenses", len(res.Expenses)),
		zap.Bool("insights", res.Insights != nil),
		zap.Int("skipped", res.Skipped),
		zap.Int("placeholders", res.Placeholders),
	)
	return res, nil
}

// TriggerRefresh asks the automation to regenerate its data. The response
// body is returned for logging only.
func (c *Client) TriggerRefresh(ctx context.Context) (string, error) {
	if c.refreshURL == "" {
		return "", configError("REFRESH_WEBHOOK_URL is not set")
	}

	body, err := c.get(ctx, c.refreshURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportError(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(fmt.Errorf("fetching webhook: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportError(fmt.Errorf("webhook returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, transportError(fmt.Errorf("reading response: %w", err))
	}
	if int64(len(body)) > c.maxBody {
		return nil, transportError(fmt.Errorf("response too large: exceeds %d bytes", c.maxBody))
	}
	return body, nil
}

// decodeArray requires the body to be a JSON array.
func decodeArray(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, shapeError(fmt.Errorf("expected JSON array, got %s", describe(trimmed)))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, shapeError(fmt.Errorf("decoding array: %w", err))
	}
	return items, nil
}

func describe(v []byte) string {
	if len(v) == 0 {
		return "empty body"
	}
	switch v[0] {
	case '{':
		return "object"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "non-array value"
	}
}
