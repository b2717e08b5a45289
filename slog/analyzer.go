// Package slog decorates htmlanalyzer services with structured debug logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/htmlanalyzer"
)

var _ htmlanalyzer.Analyzer = (*LoggingAnalyzer)(nil)

// LoggingAnalyzer wraps an Analyzer with debug logging.
type LoggingAnalyzer struct {
	next   htmlanalyzer.Analyzer
	logger *slog.Logger
}

// NewLoggingAnalyzer creates a new LoggingAnalyzer.
func NewLoggingAnalyzer(next htmlanalyzer.Analyzer, logger *slog.Logger) *LoggingAnalyzer {
	return &LoggingAnalyzer{next: next, logger: logger}
}

// Analyze delegates to the wrapped analyzer and logs the outcome.
func (a *LoggingAnalyzer) Analyze(ctx context.Context, url string) (result *htmlanalyzer.Result, err error) {
	defer func(begin time.Time) {
		var title string
		var elements, screenshot int
		if result != nil {
			screenshot = len(result.Screenshot)
			if result.Analysis != nil {
				title = result.Analysis.PageInfo.Title
				elements = len(result.Analysis.Elements)
			}
		}
		a.logger.Info("analyze",
			"url", url,
			"title", title,
			"elements", elements,
			"screenshot_bytes", screenshot,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Analyze(ctx, url)
}

// Close delegates to the wrapped analyzer.
func (a *LoggingAnalyzer) Close() error {
	return a.next.Close()
}
