// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package perplexity is an HTTP client for the Perplexity API. It covers
// the two endpoints the research tool uses: the Agentic Research API
// (/v1/responses) and the Chat Completions API (/chat/completions).
// Transport failures surface as the typed errors in errors.go; HTTP 429
// is retried with exponential backoff before it surfaces.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/research-tool/internal/httputil"
)

// apiBase is the Perplexity API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.perplexity.ai"

const userAgent = "research-tool/0.1"

// Client talks to the Perplexity API. A Client is safe for concurrent use.
type Client struct {
	apiKey     string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
}

// NewClient builds a Client. maxRetries bounds transport-level retries on
// HTTP 429; it is unrelated to the tool's mode fallback.
func NewClient(apiKey string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		apiKey:     apiKey,
		timeout:    timeout,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Close releases idle connections. Safe to call more than once.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// postJSON sends a JSON POST to apiBase+path and decodes the 2xx response
// body into out. Failures map onto the typed errors in errors.go.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		if isTimeout(err) {
			return &TimeoutError{Timeout: c.timeout}
		}
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := readErrorMessage(resp.Body)
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return &RateLimitError{Message: msg}
		case http.StatusBadRequest:
			return &BadRequestError{Message: msg}
		default:
			return &StatusError{Code: resp.StatusCode, Message: msg}
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// apiError is the error envelope Perplexity returns on non-2xx statuses.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// readErrorMessage extracts the upstream error message from a non-2xx body,
// falling back to the raw body text.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var ae apiError
	if json.Unmarshal(raw, &ae) == nil && ae.Error.Message != "" {
		return ae.Error.Message
	}
	return string(bytes.TrimSpace(raw))
}
