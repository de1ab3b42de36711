// internal/apiclient/client.go
//
// HTTP client for the dipscan analysis service.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dipscan/internal/market"
)

const defaultTimeout = 2 * time.Minute

// APIError is a non-2xx response from the analysis service. The service
// reports failures as {"detail": "..."} bodies.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("analysis service returned HTTP %d", e.StatusCode)
}

// Client talks to one analysis service instance.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithTimeout bounds each round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpc.Timeout = d
		}
	}
}

// New builds a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Analyze submits filter parameters and returns the matching records.
func (c *Client) Analyze(ctx context.Context, params market.FilterParams) (*market.AnalyzeResult, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode params: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: analyze: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}
	var result market.AnalyzeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("apiclient: decode analyze response: %w", err)
	}
	return &result, nil
}

// Status probes the health endpoint and reports the round-trip latency.
func (c *Client) Status(ctx context.Context) (*market.StatusPayload, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return nil, 0, fmt.Errorf("apiclient: build request: %w", err)
	}
	start := time.Now()
	resp, err := c.httpc.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, fmt.Errorf("apiclient: status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, latency, decodeError(resp)
	}
	var payload market.StatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, latency, fmt.Errorf("apiclient: decode status response: %w", err)
	}
	return &payload, latency, nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return apiErr
	}
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(data, &body) == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	}
	return apiErr
}
