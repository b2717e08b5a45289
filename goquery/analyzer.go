package goquery

import (
	"context"
	"fmt"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/extract"
)

var _ htmlanalyzer.Analyzer = (*Analyzer)(nil)

// Analyzer analyzes pages without a browser. Markup comes from a Fetcher;
// results carry no screenshot.
type Analyzer struct {
	fetcher   htmlanalyzer.Fetcher
	extractor *extract.Extractor
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithExtractOptions configures the extraction run over each page.
func WithExtractOptions(opts ...extract.Option) Option {
	return func(a *Analyzer) {
		a.extractor = extract.NewExtractor(opts...)
	}
}

// NewAnalyzer creates an Analyzer reading pages through fetcher.
func NewAnalyzer(fetcher htmlanalyzer.Fetcher, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:   fetcher,
		extractor: extract.NewExtractor(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze fetches url, parses it and extracts its analysis.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*htmlanalyzer.Result, error) {
	analysis, err := a.analyze(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze page: %w", err)
	}
	return &htmlanalyzer.Result{URL: url, Analysis: analysis}, nil
}

func (a *Analyzer) analyze(ctx context.Context, url string) (*htmlanalyzer.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markup, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := ParseDocument(markup)
	if err != nil {
		return nil, err
	}

	return a.extractor.Extract(doc)
}

// Close closes the underlying fetcher.
func (a *Analyzer) Close() error {
	return a.fetcher.Close()
}
