// Package client builds the single shared HTTP client the application uses to
// reach its backend API. A Client prefixes relative paths with a base URL,
// attaches a fixed header set, and applies the credential policy selected by
// its Profile. Configuration is passed in explicitly; the package never reads
// environment variables or storage on its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Client issues requests against a fixed base URL. It is immutable after
// construction and safe for concurrent use.
type Client struct {
	baseURL         string
	profile         Profile
	headers         http.Header
	auth            authorizer
	http            *http.Client
	maxResponseSize int64
	logger          *slog.Logger
}

// Option customizes a Client during construction.
type Option func(*options)

type options struct {
	transport http.RoundTripper
	metrics   *Metrics
	headers   http.Header
}

// WithTransport replaces http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithMetrics instruments the transport with m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(o *options) { o.headers.Add(key, value) }
}

// New constructs a Client from a finalized Config. For ProfileStatic the
// token is read from tokens exactly once, here. tokens may be nil for
// ProfileNone. New performs no network calls.
func New(ctx context.Context, cfg *Config, tokens TokenProvider, logger *slog.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Profile.Validate(); err != nil {
		return nil, err
	}

	o := &options{
		transport: http.DefaultTransport,
		headers:   make(http.Header),
	}
	for _, opt := range opts {
		opt(o)
	}

	logger = logger.With("system", "client", "profile", cfg.Profile)

	auth, err := newAuthorizer(ctx, cfg.Profile, tokens, logger)
	if err != nil {
		return nil, err
	}

	headers := o.headers.Clone()
	headers.Set("Accept", "application/json")
	if cfg.ContentType != "" {
		headers.Set("Content-Type", cfg.ContentType)
	}

	transport := o.transport
	if o.metrics != nil {
		transport = o.metrics.InstrumentRoundTripper(transport)
	}

	baseURL := ResolveBaseURL(cfg.BaseURL, cfg.Profile)
	logger.Info("api client configured", "base_url", baseURL)

	return &Client{
		baseURL: baseURL,
		profile: cfg.Profile,
		headers: headers,
		auth:    auth,
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.TimeoutDuration(),
		},
		maxResponseSize: cfg.MaxResponseSizeBytes(),
		logger:          logger,
	}, nil
}

// BaseURL returns the effective base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Profile returns the credential profile the client was built with.
func (c *Client) Profile() Profile {
	return c.profile
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Post issues a POST request with body encoded per Do.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

// Put issues a PUT request with body encoded per Do.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

// Patch issues a PATCH request with body encoded per Do.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

// GetJSON issues a GET request and decodes the response body into v.
func (c *Client) GetJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return resp.Decode(v)
}

// Do issues a request to path resolved against the base URL. A nil body sends
// no payload; []byte and io.Reader bodies are sent as-is; anything else is
// JSON-encoded. Responses with status >= 400 are returned together with a
// *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	target := resolveURL(c.baseURL, path)

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header = c.headers.Clone()
	if body == nil {
		req.Header.Del("Content-Type")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	if err := c.auth.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.maxResponseSize > 0 {
		reader = io.LimitReader(resp.Body, c.maxResponseSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if c.maxResponseSize > 0 && int64(len(data)) > c.maxResponseSize {
		return nil, fmt.Errorf("%s %s: %w", method, target, ErrResponseTooLarge)
	}

	c.logger.Debug("api request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
	)

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return out, &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}

	return out, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}
