package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/fs"
	analyzerhttp "github.com/fwojciec/htmlanalyzer/http"
	analyzerslog "github.com/fwojciec/htmlanalyzer/slog"
	"golang.org/x/sync/errgroup"
)

// Run executes the analyze command: it serves the directory locally,
// renders every top-level HTML file and writes one JSON/PNG pair per page.
func (c *AnalyzeCmd) Run(deps *Dependencies) error {
	cfg := *deps.Config
	if err := c.Apply(&cfg); err != nil {
		return err
	}

	dir, err := deps.InputDir(c.Dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	server, err := analyzerhttp.NewServer(dir,
		analyzerhttp.WithAddr(cfg.Addr),
		analyzerhttp.WithLogger(deps.Logger),
	)
	if err != nil {
		return err
	}
	if err := server.Open(); err != nil {
		return err
	}
	defer server.Close()

	fmt.Fprintf(deps.Stdout, "Serving %s at %s\n", dir, server.URL())

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(server.Serve)
	g.Go(func() error {
		defer server.Close()
		return analyzePages(ctx, deps, &cfg, dir, server.URL())
	})
	return g.Wait()
}

// analyzePages analyzes each page under baseURL in turn. Failures of a
// single page are reported and skipped.
func analyzePages(ctx context.Context, deps *Dependencies, cfg *htmlanalyzer.Config, dir, baseURL string) error {
	urls, err := fs.ListHTMLURLs(dir, baseURL)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "no HTML files found in %s", dir)
	}

	// Decorate only when debug output is on.
	logger := deps.Logger
	if !deps.Debug {
		logger = nil
	}

	analyzer, err := deps.Analyzers(cfg, deps.Stderr, logger)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	store := deps.Store
	if store == nil {
		store = fs.NewResultStore(cfg.OutputDir)
		if logger != nil {
			store = analyzerslog.NewLoggingStore(store, logger)
		}
	}

	fmt.Fprintf(deps.Stdout, "Found %d HTML files\n", len(urls))

	var analyzed int
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(deps.Stdout, "Analyzed %d of %d pages\n", analyzed, len(urls))
			return err
		}

		fmt.Fprintf(deps.Stdout, "[%d/%d] %s\n", i+1, len(urls), url)

		result, err := analyzer.Analyze(ctx, url)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s: %s\n", url, errorText(err))
			continue
		}

		name := fs.OutputName(result.Analysis.PageInfo.Title, url)
		paths, err := store.Save(ctx, name, result)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: saving %s: %s\n", url, errorText(err))
			continue
		}

		fmt.Fprintf(deps.Stdout, "  - Page Title: %s\n", result.Analysis.PageInfo.Title)
		fmt.Fprintf(deps.Stdout, "  wrote %s\n", strings.Join(paths, ", "))
		analyzed++
	}

	fmt.Fprintf(deps.Stdout, "Analyzed %d of %d pages\n", analyzed, len(urls))
	return nil
}
