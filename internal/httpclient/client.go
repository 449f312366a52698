// Package httpclient provides the HTTP client used to talk to remote APIs
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout is the default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response size (50MB)
	MaxResponseSize = 50 * 1024 * 1024

	// UserAgent is the user agent string for HTTP requests
	UserAgent = "mp-monitor/1.0"

	redactedValue = "REDACTED"
)

// Client is an interface for HTTP operations
type Client interface {
	// Get performs an HTTP GET request and returns the response body
	Get(ctx context.Context, url string) ([]byte, error)
}

// Option configures a DefaultClient
type Option func(*DefaultClient)

// WithRedactedParams hides the value of the given query parameters whenever a URL
// is echoed back in an error
func WithRedactedParams(params ...string) Option {
	return func(c *DefaultClient) {
		c.redactedParams = append(c.redactedParams, params...)
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *DefaultClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTransport sets a custom round tripper, mostly useful for tests
func WithTransport(rt http.RoundTripper) Option {
	return func(c *DefaultClient) {
		c.client.Transport = rt
	}
}

// DefaultClient is the default HTTP client implementation
type DefaultClient struct {
	client         *http.Client
	timeout        time.Duration
	userAgent      string
	redactedParams []string
}

// NewDefaultClient creates a new default HTTP client with the specified timeout
// If timeout is 0, uses DefaultTimeout
func NewDefaultClient(timeout time.Duration, opts ...Option) Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	c := &DefaultClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout:   timeout,
		userAgent: UserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an HTTP GET request
func (c *DefaultClient) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", c.redact(rawURL), c.scrub(err))
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", c.scrub(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, c.redact(rawURL), resp.Status)
	}

	if resp.ContentLength > MaxResponseSize {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes (%.2f MB)",
			resp.ContentLength, MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	// +1 to detect if the limit was exceeded
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", c.scrub(err))
	}

	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes (%.2f MB)",
			MaxResponseSize, float64(MaxResponseSize)/(1024*1024))
	}

	return body, nil
}

// redact returns rawURL with the configured query parameters masked
func (c *DefaultClient) redact(rawURL string) string {
	return RedactURL(rawURL, c.redactedParams...)
}

// scrub rewrites the URL carried by a *url.Error so the secret never reaches callers.
// The original error is kept as the cause so errors.Is still sees context.Canceled
// or a net timeout.
func (c *DefaultClient) scrub(err error) error {
	if len(c.redactedParams) == 0 {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{
			Op:  urlErr.Op,
			URL: c.redact(urlErr.URL),
			Err: urlErr.Err,
		}
	}
	return err
}

// RedactURL masks the value of every listed query parameter in rawURL.
// Unparsable input is replaced entirely because it may still contain a secret.
func RedactURL(rawURL string, params ...string) string {
	if len(params) == 0 {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return redactedValue
	}
	q := u.Query()
	changed := false
	for _, p := range params {
		if q.Has(p) {
			q.Set(p, redactedValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
