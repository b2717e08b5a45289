package mock

import (
	"context"

	"github.com/fwojciec/htmlanalyzer"
)

// Compile-time interface verification.
var (
	_ htmlanalyzer.Analyzer    = (*Analyzer)(nil)
	_ htmlanalyzer.ResultStore = (*ResultStore)(nil)
	_ htmlanalyzer.Fetcher     = (*Fetcher)(nil)
)

// Analyzer is a mock implementation of htmlanalyzer.Analyzer.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, url string) (*htmlanalyzer.Result, error)
	CloseFn   func() error
}

func (a *Analyzer) Analyze(ctx context.Context, url string) (*htmlanalyzer.Result, error) {
	return a.AnalyzeFn(ctx, url)
}

func (a *Analyzer) Close() error {
	return a.CloseFn()
}

// ResultStore is a mock implementation of htmlanalyzer.ResultStore.
type ResultStore struct {
	SaveFn func(ctx context.Context, name string, result *htmlanalyzer.Result) ([]string, error)
}

func (s *ResultStore) Save(ctx context.Context, name string, result *htmlanalyzer.Result) ([]string, error) {
	return s.SaveFn(ctx, name, result)
}

// Fetcher is a mock implementation of htmlanalyzer.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
