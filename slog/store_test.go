package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/mock"
	analyzerslog "github.com/fwojciec/htmlanalyzer/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("logs name and written paths", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ResultStore{
			SaveFn: func(ctx context.Context, name string, result *htmlanalyzer.Result) ([]string, error) {
				return []string{"output/" + name + ".json", "output/" + name + ".png"}, nil
			},
		}

		store := analyzerslog.NewLoggingStore(inner, logger)
		paths, err := store.Save(context.Background(), "Home", &htmlanalyzer.Result{})

		require.NoError(t, err)
		assert.Len(t, paths, 2)
		output := buf.String()
		assert.Contains(t, output, "msg=save")
		assert.Contains(t, output, "name=Home")
		assert.Contains(t, output, "output/Home.json")
		assert.Contains(t, output, "output/Home.png")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ResultStore{
			SaveFn: func(ctx context.Context, name string, result *htmlanalyzer.Result) ([]string, error) {
				return nil, errors.New("disk full")
			},
		}

		store := analyzerslog.NewLoggingStore(inner, logger)
		_, err := store.Save(context.Background(), "Home", &htmlanalyzer.Result{})

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}
