package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/htmlanalyzer"
)

// DefaultFetchTimeout bounds a single page download.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps the size of a downloaded page.
const DefaultMaxBodyBytes = 32 << 20

var _ htmlanalyzer.Fetcher = (*Fetcher)(nil)

// Fetcher downloads page markup over plain HTTP. It runs no scripts, so
// the static engine uses it against the local file server.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodyBytes caps how much of a response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch returns the body of url. Any status other than 200 is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return "", htmlanalyzer.Errorf(htmlanalyzer.ENOTFOUND, "page not found: %s", url)
		}
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}

	return string(body), nil
}

// Close is a no-op; http.Client holds nothing that needs releasing.
func (f *Fetcher) Close() error {
	return nil
}
