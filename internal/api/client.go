// Package api is the single choke point between ragdesk and the RAG study
// service. Every HTTP call flows through Client.Do, which attaches the
// bearer token from the session store, reads the response body exactly once,
// and turns non-success statuses into *StatusError. Requests are single
// attempt: no retries, no backoff.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ragdesk/internal/logging"
	"ragdesk/internal/session"

	"github.com/google/uuid"
)

const defaultTimeout = 60 * time.Second

// StatusError is returned for any response outside the 2xx range. It carries
// the raw response text so workflows can show the server's own words.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed (%d)", e.StatusCode)
}

// Options customizes a single request. The zero value is a GET with no body.
type Options struct {
	Method  string            // Defaults to GET
	Body    any               // JSON-marshalled when non-nil
	Headers map[string]string // Overlaid on the defaults; caller values win
}

// Client talks to one service instance on behalf of one credential store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *session.Store
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the service at baseURL. The credential store is
// injected so the gateway stays testable without touching the real home dir.
func New(baseURL string, creds *session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		creds:      creds,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs one request and returns the raw response body. Headers are
// assembled in three layers: the JSON default, then caller headers, then
// Authorization from the credential store. The last layer wins, so callers
// can override Content-Type but never remove or replace the bearer token,
// and no Authorization header is sent when nobody is logged in.
func (c *Client) Do(ctx context.Context, path string, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	reqID := uuid.NewString()[:8]
	logging.APIDebug("[%s] %s %s", reqID, method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIWarn("[%s] %s %s transport error: %v", reqID, method, path, err)
		return nil, err
	}
	defer resp.Body.Close()

	// Read the body once, shared by the success and failure paths.
	text, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.APIWarn("[%s] %s %s -> %d", reqID, method, path, resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: path, Body: string(text)}
	}

	logging.APIDebug("[%s] %s %s -> %d (%d bytes)", reqID, method, path, resp.StatusCode, len(text))
	return text, nil
}

// Request performs Do and decodes the response as a JSON object. An empty or
// unparsable success body yields an empty map, never an error: some service
// endpoints answer with plain text and callers only care that the call went
// through.
func (c *Client) Request(ctx context.Context, path string, opts *Options) (map[string]any, error) {
	text, err := c.Do(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	if len(text) == 0 {
		return map[string]any{}, nil
	}
	result := map[string]any{}
	if err := json.Unmarshal(text, &result); err != nil {
		return map[string]any{}, nil
	}
	return result, nil
}
