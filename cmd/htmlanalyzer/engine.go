package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/goquery"
	analyzerhttp "github.com/fwojciec/htmlanalyzer/http"
	"github.com/fwojciec/htmlanalyzer/rod"
	analyzerslog "github.com/fwojciec/htmlanalyzer/slog"
)

// AnalyzerFactory returns a ready-to-use Analyzer for cfg. Progress hints
// go to stderr; debug logs go to logger when it is non-nil.
type AnalyzerFactory func(cfg *htmlanalyzer.Config, stderr io.Writer, logger *slog.Logger) (htmlanalyzer.Analyzer, error)

// newAnalyzer builds the browser engine, or the static engine when
// cfg.Static is set.
func newAnalyzer(cfg *htmlanalyzer.Config, stderr io.Writer, logger *slog.Logger) (htmlanalyzer.Analyzer, error) {
	var analyzer htmlanalyzer.Analyzer
	if cfg.Static {
		var opts []analyzerhttp.Option
		if cfg.Browser.Timeout > 0 {
			opts = append(opts, analyzerhttp.WithTimeout(cfg.Browser.Timeout))
		}
		var fetcher htmlanalyzer.Fetcher = analyzerhttp.NewFetcher(opts...)
		if logger != nil {
			fetcher = analyzerslog.NewLoggingFetcher(fetcher, logger)
		}
		analyzer = goquery.NewAnalyzer(fetcher)
	} else {
		r := rod.NewAnalyzer(
			rod.WithTimeout(cfg.Browser.Timeout),
			rod.WithBrowserBin(cfg.Browser.Bin),
			rod.WithHeadless(!cfg.Browser.Headful),
			rod.WithViewport(cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight),
		)
		if err := r.Initialize(); err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --browser-bin")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		analyzer = r
	}

	if logger != nil {
		analyzer = analyzerslog.NewLoggingAnalyzer(analyzer, logger)
	}
	return analyzer, nil
}
