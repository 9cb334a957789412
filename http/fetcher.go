// Package http implements docqa.Fetcher with plain GET requests.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docqa"
)

// DefaultFetchTimeout bounds a single page request.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the crawler to documentation hosts.
const DefaultUserAgent = "docqa/1.0 (+https://github.com/fwojciec/docqa)"

// DefaultMaxBodySize caps the bytes read from one response.
const DefaultMaxBodySize = 10 << 20

var _ docqa.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML over HTTP. It does not execute JavaScript and
// does not retry.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
// Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the number of body bytes read per response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch issues a GET for url and returns the body. Transport failures,
// timeouts and non-2xx responses return EFETCH.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", docqa.Errorf(docqa.EFETCH, "invalid request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", docqa.Errorf(docqa.EFETCH, "GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", docqa.Errorf(docqa.EFETCH, "GET %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", docqa.Errorf(docqa.EFETCH, "read body of %s: %v", url, err)
	}

	return string(body), nil
}

// Close is a no-op; http.Client needs no explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
