package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Default per-call timeouts. Query submission is long-running because the
// service may perform multiple tool-use rounds before answering.
const (
	DefaultProbeTimeout  = 5 * time.Second
	DefaultStatusTimeout = 10 * time.Second
	DefaultQueryTimeout  = 180 * time.Second
)

// Client communicates with the agent service over HTTP. The endpoint and
// bearer token are fixed at construction. A zero token means unauthenticated
// access; the request path is identical either way.
type Client struct {
	baseURL       string
	token         string
	httpClient    *http.Client
	probeTimeout  time.Duration
	statusTimeout time.Duration
	queryTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeouts overrides the per-call timeouts. Zero values keep defaults.
func WithTimeouts(probe, status, query time.Duration) Option {
	return func(c *Client) {
		if probe > 0 {
			c.probeTimeout = probe
		}
		if status > 0 {
			c.statusTimeout = status
		}
		if query > 0 {
			c.queryTimeout = query
		}
	}
}

// NewClient creates a Client for the given service base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{},
		probeTimeout:  DefaultProbeTimeout,
		statusTimeout: DefaultStatusTimeout,
		queryTimeout:  DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured service endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Authenticated returns true if a bearer token is configured.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// newRequest builds a request with the JSON content type and, when a token
// is configured, the Authorization header.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("api: building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// Ping issues a liveness probe against the service root. Any 200 response
// means live; timeouts, transport errors, and other statuses all mean not
// live. Failures are logged to stderr, never returned.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parley: liveness probe: %v\n", err)
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parley: liveness probe failed: %v\n", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Status fetches the service's capability document. Returns nil on any
// failure: unreachable, non-200, and malformed responses are all collapsed
// into nil per the client contract.
func (c *Client) Status(ctx context.Context) *CapabilityInfo {
	ctx, cancel := context.WithTimeout(ctx, c.statusTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, "/status", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parley: status request: %v\n", err)
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parley: status request failed: %v\n", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "parley: status request failed: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var info CapabilityInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		fmt.Fprintf(os.Stderr, "parley: decoding status response: %v\n", err)
		return nil
	}
	return &info
}

// Query submits a query to the service and waits for the full answer. It
// never returns an error: every transport outcome is normalized into a
// QueryResult, with ResponseText describing the failure class when
// Success is false.
func (c *Client) Query(ctx context.Context, text string) QueryResult {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	payload, err := json.Marshal(queryRequest{Query: text})
	if err != nil {
		return failedResult(fmt.Sprintf("encoding query: %v", err), err.Error())
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/query", bytes.NewReader(payload))
	if err != nil {
		return failedResult(fmt.Sprintf("building query request: %v", err), err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failedResult(fmt.Sprintf("request error: %v", err), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedResult(
			fmt.Sprintf("query request failed with status %d", resp.StatusCode),
			fmt.Sprintf("HTTP %d", resp.StatusCode),
		)
	}

	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return failedResult(fmt.Sprintf("decoding query response: %v", err), err.Error())
	}

	return QueryResult{
		Success:       body.Success,
		ResponseText:  body.Response,
		Error:         body.Error,
		RoundCount:    body.TotalRounds,
		ExecutionTime: body.TotalExecutionTime,
	}
}

// failedResult builds the normalized failure QueryResult.
func failedResult(text, errMsg string) QueryResult {
	return QueryResult{
		Success:      false,
		ResponseText: text,
		Error:        errMsg,
	}
}
