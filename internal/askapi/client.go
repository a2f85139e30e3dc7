// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/docmind-tui/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL is used when no base URL is configured.
// Uses an explicit IPv4 address instead of localhost to avoid IPv6 resolution
// picking a different listener.
const DefaultBaseURL = "http://127.0.0.1:8000"

// maxResponseBytes caps how much of an /ask body is read.
const maxResponseBytes = 8 << 20

// Config holds configuration options for the ask client.
type Config struct {
	// BaseURL of the documentation service (default: http://127.0.0.1:8000).
	BaseURL string

	// Timeout for a whole request. Zero disables the timeout, which means a
	// hung backend keeps an ask outstanding indefinitely.
	Timeout time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero means unlimited.
	RequestsPerSecond float64

	// HTTPClient overrides the transport (tests, proxies). Its Timeout is
	// left untouched.
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{BaseURL: DefaultBaseURL}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the documentation service.
//
// The Client is safe for concurrent use. The base URL can be swapped at
// runtime (config reload) and applies to requests started afterwards.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Asker = (*Client)(nil)

// NewClient creates a client. A nil config uses DefaultConfig.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: httpClient,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// BaseURL returns the current service base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points subsequent requests at a different service.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	c.baseURL = normalizeBaseURL(baseURL)
	c.mu.Unlock()
}

func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if u == "" {
		return DefaultBaseURL
	}
	return u
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Ask posts one question and returns the decoded answer.
//
// Transport failures return ErrTypeConnection or ErrTypeTimeout; non-2xx
// statuses return ErrTypeStatus without reading the body, and a 2xx body that
// is not a JSON object returns ErrTypeInvalidResponse. Within an object the
// answer and each source decode independently: a non-string answer is treated
// as missing and malformed source entries are dropped.
func (c *Client) Ask(ctx context.Context, question string) (*AskResponse, error) {
	body, err := json.Marshal(AskRequest{Question: question})
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/ask", body)
	if err != nil {
		return nil, err
	}
	defer drainClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return nil, statusError("ask", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(err)
	}
	return decodeAnswer(data)
}

// rawAnswer holds the /ask fields undecoded; each is decoded on its own.
type rawAnswer struct {
	Answer  json.RawMessage `json:"answer"`
	Sources json.RawMessage `json:"sources"`
}

func decodeAnswer(data []byte) (*AskResponse, error) {
	var raw rawAnswer
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	result := &AskResponse{}
	// null, numbers and objects leave Answer empty.
	_ = json.Unmarshal(raw.Answer, &result.Answer)

	var entries []json.RawMessage
	if err := json.Unmarshal(raw.Sources, &entries); err != nil {
		return result, nil
	}
	for _, entry := range entries {
		var c model.Citation
		if err := json.Unmarshal(entry, &c); err != nil {
			continue
		}
		result.Sources = append(result.Sources, c)
	}
	return result, nil
}

// CheckRunning verifies that the service is reachable and healthy.
func (c *Client) CheckRunning(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	defer drainClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return statusError("health check", resp.StatusCode, resp.Status)
	}
	return nil
}

// Initialize asks the service to build its knowledge base and returns the
// service's message.
func (c *Client) Initialize(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/initialize", nil)
	if err != nil {
		return "", err
	}
	defer drainClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return "", statusError("initialize", resp.StatusCode, resp.Status)
	}

	var result MessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Message, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	return resp, nil
}

func transportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "cannot reach documentation service", Cause: err}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// drainClose lets the transport reuse the connection.
func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}
