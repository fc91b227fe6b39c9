package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

const (
	// DefaultDelay is the pause inserted after every remote call.
	DefaultDelay = 2 * time.Second

	defaultMaxIdleConns    = 10
	defaultIdleConnTimeout = 60 * time.Second
)

// Response holds the result of an HTTP request made by [Client].
//
// Response captures the body (limited to 1MB), status code, latency, and any
// error that occurred. A non-2xx status code is reported as an error, with the
// body still populated for diagnostics.
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the time taken for the request, excluding the trailing delay.
	Latency time.Duration

	// Error contains any error that occurred during the request.
	Error error
}

// OK reports whether the request completed with a 2xx status.
func (r Response) OK() bool {
	return r.Error == nil
}

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default [SleepFunc], backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Client is a rate-limited HTTP client for the registration API.
//
// Every call to [Client.Fetch] is followed by a fixed delay, and calls are
// serialized: a second Fetch blocks until the first one, including its delay,
// has finished. Errors never escape as a separate return value; they are
// captured in [Response.Error] so callers can degrade to an empty result.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	delay      time.Duration
	sleep      SleepFunc

	mu    sync.Mutex // held for the duration of a call and its delay
	token string
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying [http.Client].
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithDelay sets the pause inserted after every call. Defaults to [DefaultDelay].
func WithDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithTimeout sets a transport-level timeout per request. Zero, the default,
// means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithSleep replaces the function used for the post-call delay.
func WithSleep(fn SleepFunc) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithHeaders sets headers sent with every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// NewClient creates a new [Client].
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    defaultMaxIdleConns,
				IdleConnTimeout: defaultIdleConnTimeout,
			},
		},
		headers: make(map[string]string),
		delay:   DefaultDelay,
		sleep:   Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token sent in the Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Delay returns the pause inserted after every call.
func (c *Client) Delay() time.Duration {
	return c.delay
}

// Fetch performs an HTTP request and returns a structured [Response].
//
// If body is non-nil it is encoded as JSON. If method is empty, GET is used.
// The configured delay is always applied after the request, whether it
// succeeded or not; it is cut short only when ctx is cancelled.
func (c *Client) Fetch(ctx context.Context, method, url string, body any) Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { _ = c.sleep(ctx, c.delay) }()

	return c.do(ctx, method, url, body)
}

func (c *Client) do(ctx context.Context, method, url string, body any) Response {
	start := time.Now()

	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Response{
				Latency: time.Since(start),
				Error:   fmt.Errorf("failed to encode request body: %w", err),
			}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	result := Response{
		Body:       respBody,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return result
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
