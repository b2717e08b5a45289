package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/yaml"
)

// errMissingDir is returned when neither an argument nor development mode
// names the input directory.
var errMissingDir = htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "directory argument required")

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Debug  bool
	Dev    bool
	Config *htmlanalyzer.Config

	// Analyzers builds the page engine for a run.
	Analyzers AnalyzerFactory

	// Store overrides the result store built from Config.OutputDir.
	Store htmlanalyzer.ResultStore
}

// InputDir resolves the directory to work on. In development mode the
// configured dev path replaces arg.
func (d *Dependencies) InputDir(arg string) (string, error) {
	dir := arg
	if d.Dev {
		dir = d.Config.DevPath
		fmt.Fprintf(d.Stdout, "Development mode: using %s\n", dir)
	}
	if dir == "" {
		return "", errMissingDir
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", htmlanalyzer.Errorf(htmlanalyzer.ENOTFOUND, "directory not found: %s", dir)
		}
		return "", fmt.Errorf("checking %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "not a directory: %s", dir)
	}
	return dir, nil
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" type:"path" help:"YAML configuration file"`
	Addr    string `help:"Address of the local file server (default: 127.0.0.1:3000)" placeholder:"HOST:PORT"`
	Debug   bool   `help:"Log debug output to stderr"`
	Dev     bool   `env:"HTMLANALYZER_DEV" help:"Development mode: use the dev path instead of the directory argument"`
	DevPath string `env:"HTMLANALYZER_DEV_PATH" type:"path" help:"Directory used in development mode (default: samples)"`

	Analyze AnalyzeCmd `cmd:"" default:"withargs" help:"Analyze every HTML file in a directory"`
	Serve   ServeCmd   `cmd:"" help:"Serve a directory of HTML files until interrupted"`
}

// LoadConfig layers the config file and global flags over the defaults.
func (c *CLI) LoadConfig() (*htmlanalyzer.Config, error) {
	cfg := htmlanalyzer.DefaultConfig()
	if c.Config != "" {
		loaded, err := yaml.LoadConfig(c.Config)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.DevPath != "" {
		cfg.DevPath = c.DevPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AnalyzeCmd is the default command.
type AnalyzeCmd struct {
	Dir        string        `arg:"" optional:"" type:"path" help:"Directory containing HTML files"`
	Output     string        `short:"o" type:"path" help:"Output directory (default: output)"`
	Timeout    time.Duration `short:"t" help:"Per-page analysis timeout (0 keeps browser defaults)"`
	Static     bool          `help:"Analyze markup without a browser (no screenshots, no layout)"`
	BrowserBin string        `type:"path" help:"Chrome or Chromium executable"`
	Viewport   string        `placeholder:"WxH" help:"Browser viewport, for example 1280x720"`
	Headful    bool          `help:"Show the browser window"`
}

// Apply overlays the command's flags on cfg and validates the result.
func (c *AnalyzeCmd) Apply(cfg *htmlanalyzer.Config) error {
	if c.Output != "" {
		cfg.OutputDir = c.Output
	}
	if c.Timeout != 0 {
		cfg.Browser.Timeout = c.Timeout
	}
	if c.Static {
		cfg.Static = true
	}
	if c.BrowserBin != "" {
		cfg.Browser.Bin = c.BrowserBin
	}
	if c.Headful {
		cfg.Browser.Headful = true
	}
	if c.Viewport != "" {
		w, h, err := ParseViewport(c.Viewport)
		if err != nil {
			return err
		}
		cfg.Browser.ViewportWidth = w
		cfg.Browser.ViewportHeight = h
	}
	return cfg.Validate()
}

// ParseViewport parses a "WIDTHxHEIGHT" size.
func ParseViewport(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if ok {
		width, err = strconv.Atoi(strings.TrimSpace(ws))
		if err == nil {
			height, err = strconv.Atoi(strings.TrimSpace(hs))
		}
	}
	if !ok || err != nil || width <= 0 || height <= 0 {
		return 0, 0, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "invalid viewport %q: want WIDTHxHEIGHT", s)
	}
	return width, height, nil
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Dir string `arg:"" optional:"" type:"path" help:"Directory containing HTML files"`
}
