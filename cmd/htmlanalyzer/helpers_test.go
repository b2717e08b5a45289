package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/htmlanalyzer"
	main "github.com/fwojciec/htmlanalyzer/cmd/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/mock"
	"github.com/stretchr/testify/require"
)

// writePages creates the named files under a fresh temp dir.
func writePages(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// titleAnalyzer answers every URL with an analysis titled after the page
// stem and a fake screenshot. Close calls are counted.
type titleAnalyzer struct {
	mock.Analyzer
	mu     sync.Mutex
	closes int
	urls   []string
}

func newTitleAnalyzer(fail func(url string) error) *titleAnalyzer {
	a := &titleAnalyzer{}
	a.AnalyzeFn = func(_ context.Context, url string) (*htmlanalyzer.Result, error) {
		a.mu.Lock()
		a.urls = append(a.urls, url)
		a.mu.Unlock()
		if fail != nil {
			if err := fail(url); err != nil {
				return nil, err
			}
		}
		title := strings.TrimSuffix(path.Base(url), ".html")
		return &htmlanalyzer.Result{
			URL:        url,
			Analysis:   &htmlanalyzer.Analysis{PageInfo: htmlanalyzer.PageInfo{Title: title}},
			Screenshot: []byte("png"),
		}, nil
	}
	a.CloseFn = func() error {
		a.mu.Lock()
		defer a.mu.Unlock()
		a.closes++
		return nil
	}
	return a
}

func (a *titleAnalyzer) factory() main.AnalyzerFactory {
	return func(*htmlanalyzer.Config, io.Writer, *slog.Logger) (htmlanalyzer.Analyzer, error) {
		return a, nil
	}
}

// newDeps returns dependencies bound to a loopback port chosen by the OS.
func newDeps(t *testing.T, output string, analyzers main.AnalyzerFactory) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := htmlanalyzer.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.OutputDir = output

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:       context.Background(),
		Stdout:    stdout,
		Stderr:    stderr,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:    &cfg,
		Analyzers: analyzers,
	}, stdout, stderr
}
