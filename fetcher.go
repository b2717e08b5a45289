package htmlanalyzer

import "context"

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch returns the response body for url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
