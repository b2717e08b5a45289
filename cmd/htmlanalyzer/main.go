package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/htmlanalyzer"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is fine; it only feeds the HTMLANALYZER_* variables.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorText(err))
		stop()
		os.Exit(1)
	}
}

// errorText returns the user-facing text of err.
func errorText(err error) string {
	if htmlanalyzer.ErrorCode(err) == htmlanalyzer.EINTERNAL {
		return err.Error()
	}
	return htmlanalyzer.ErrorMessage(err)
}

// Main represents the program.
type Main struct {
	// Analyzers builds the page engine. Replaced in tests.
	Analyzers AnalyzerFactory
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Analyzers: newAnalyzer,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("htmlanalyzer"),
		kong.Description("Render local HTML files and record their structure, styles and screenshots"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// With a no-op exit kong would carry on after printing help.
	if slices.ContainsFunc(args, isHelpFlag) || (len(args) > 0 && args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		Logger:    newLogger(cli.Debug, stderr),
		Debug:     cli.Debug,
		Dev:       cli.Dev,
		Config:    cfg,
		Analyzers: m.Analyzers,
	}

	if err := kongCtx.Run(deps); err != nil {
		if errors.Is(err, errMissingDir) {
			_ = kongCtx.PrintUsage(false)
		}
		return err
	}
	return nil
}

func isHelpFlag(arg string) bool {
	return arg == "--help" || arg == "-h"
}

// newLogger returns a debug text logger on w, or a logger that drops
// everything when debug output is off.
func newLogger(debug bool, w io.Writer) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
