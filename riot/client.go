package riot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout           = 15 * time.Second
	DefaultLookupConcurrency = 4
)

// Client talks to the Riot authentication, player-data and public catalog APIs.
// It holds no account state; every Authenticate call yields an independent Session.
type Client struct {
	httpClient        *http.Client
	timeout           time.Duration
	endpoints         Endpoints
	logger            *zap.Logger
	lookupConcurrency int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Jar is ignored;
// Authenticate installs a fresh one per call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every individual request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.endpoints = e
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLookupConcurrency limits how many catalog lookups run at once.
func WithLookupConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.lookupConcurrency = n
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:        &http.Client{},
		endpoints:         DefaultEndpoints(),
		logger:            zap.NewNop(),
		lookupConcurrency: DefaultLookupConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.httpClient
	switch {
	case c.timeout > 0:
		hc.Timeout = c.timeout
	case hc.Timeout <= 0:
		hc.Timeout = DefaultTimeout
	}
	hc.Jar = nil
	c.httpClient = &hc
	return c
}

// Endpoints returns the hosts the client is configured with.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// handshakeClient returns a copy of the HTTP client with its own cookie jar.
// The authorization endpoint correlates the intent, credential and multifactor
// calls through cookies only.
func (c *Client) handshakeClient() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	hc := *c.httpClient
	hc.Jar = jar
	return &hc, nil
}

// doJSON performs one request and decodes the JSON response into out. The
// response status is returned so callers can branch on it; non-2xx responses
// with a decodable body are not errors here.
func (c *Client) doJSON(ctx context.Context, hc *http.Client, method, url string, header http.Header, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = append([]string(nil), v...)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return 0, upstreamf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, upstreamf("%s %s: read body: %v", method, url, err)
	}

	c.logger.Debug("riot request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
	)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= 400 {
			return resp.StatusCode, upstreamf("%s %s: HTTP %d", method, url, resp.StatusCode)
		}
		return resp.StatusCode, upstreamf("%s %s: decode: %v", method, url, err)
	}
	return resp.StatusCode, nil
}

func checkStatus(step string, status int) error {
	if status < 200 || status > 299 {
		return upstreamf("%s: HTTP %d", step, status)
	}
	return nil
}
