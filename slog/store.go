package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/htmlanalyzer"
)

var _ htmlanalyzer.ResultStore = (*LoggingStore)(nil)

// LoggingStore wraps a ResultStore with debug logging.
type LoggingStore struct {
	next   htmlanalyzer.ResultStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next htmlanalyzer.ResultStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Save delegates to the wrapped store and logs the written paths.
func (s *LoggingStore) Save(ctx context.Context, name string, result *htmlanalyzer.Result) (paths []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("save",
			"name", name,
			"paths", paths,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, name, result)
}
