package htmlanalyzer

import "context"

// Result is the outcome of analyzing one page.
type Result struct {
	URL      string
	Analysis *Analysis

	// Screenshot holds the full-page PNG. Engines that do not render
	// leave it nil.
	Screenshot []byte
}

// Analyzer loads pages and extracts their analysis.
type Analyzer interface {
	// Analyze loads the page at url and returns its analysis.
	// Each call uses its own tab; nothing is shared between calls.
	Analyze(ctx context.Context, url string) (*Result, error)

	// Close releases engine resources. Close is safe to call more than once.
	Close() error
}

// ResultStore persists analysis results.
type ResultStore interface {
	// Save writes the result under the given base name and returns the
	// paths that were written.
	Save(ctx context.Context, name string, result *Result) ([]string, error)
}
