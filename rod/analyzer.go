// Package rod implements htmlanalyzer.Analyzer on top of a headless Chrome
// driven through go-rod.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/fwojciec/htmlanalyzer/extract"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ htmlanalyzer.Analyzer = (*Analyzer)(nil)

// Analyzer renders pages in a single browser, one tab per call, and
// extracts their analysis together with a full-page screenshot.
//
// An Analyzer must be initialized before use. It is safe for concurrent use
// once initialized, though callers normally analyze pages one at a time.
type Analyzer struct {
	timeout        time.Duration
	bin            string
	headless       bool
	viewportWidth  int
	viewportHeight int
	extractor      *extract.Extractor

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	closed   atomic.Bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTimeout bounds each Analyze call, from opening the tab to extraction.
// Zero keeps the browser's own defaults.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		a.timeout = d
	}
}

// WithBrowserBin sets the browser executable. By default the launcher finds
// a local Chrome or downloads one.
func WithBrowserBin(path string) Option {
	return func(a *Analyzer) {
		a.bin = path
	}
}

// WithViewport sets the page viewport. Non-positive sizes keep the browser
// default.
func WithViewport(width, height int) Option {
	return func(a *Analyzer) {
		a.viewportWidth = width
		a.viewportHeight = height
	}
}

// WithHeadless controls whether the browser window is hidden.
// Defaults to true.
func WithHeadless(headless bool) Option {
	return func(a *Analyzer) {
		a.headless = headless
	}
}

// WithExtractOptions configures the extraction run over each page.
func WithExtractOptions(opts ...extract.Option) Option {
	return func(a *Analyzer) {
		a.extractor = extract.NewExtractor(opts...)
	}
}

// NewAnalyzer creates an Analyzer. No browser is started until Initialize.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		headless:  true,
		extractor: extract.NewExtractor(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Initialize launches and connects the browser. It is a no-op when the
// browser is already running and fails once the Analyzer is closed.
func (a *Analyzer) Initialize() error {
	if a.closed.Load() {
		return htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "analyzer is closed")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.browser != nil {
		return nil
	}

	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(a.headless)
	if a.bin != "" {
		l = l.Bin(a.bin)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	a.browser = browser
	a.launcher = l
	return nil
}

// Analyze renders url in a fresh tab and returns its analysis and
// screenshot. The tab is closed before Analyze returns.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*htmlanalyzer.Result, error) {
	a.mu.Lock()
	browser := a.browser
	a.mu.Unlock()

	if browser == nil {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "browser not initialized")
	}

	result, err := a.analyze(ctx, browser, url)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze page: %w", err)
	}
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, browser *rod.Browser, url string) (*htmlanalyzer.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening tab: %w", err)
	}
	// The tab is closed even after ctx expires.
	defer func() { _ = page.Context(context.Background()).Close() }()

	if a.viewportWidth > 0 && a.viewportHeight > 0 {
		err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             a.viewportWidth,
			Height:            a.viewportHeight,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			return nil, fmt.Errorf("setting viewport: %w", err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for load: %w", err)
	}

	err = proto.EmulationSetEmulatedMedia{
		Features: []*proto.EmulationMediaFeature{
			{Name: "prefers-reduced-motion", Value: "reduce"},
		},
	}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("emulating reduced motion: %w", err)
	}

	screenshot, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}

	doc, err := takeSnapshot(page, a.extractor.Properties())
	if err != nil {
		return nil, err
	}

	analysis, err := a.extractor.Extract(doc)
	if err != nil {
		return nil, err
	}

	return &htmlanalyzer.Result{
		URL:        url,
		Analysis:   analysis,
		Screenshot: screenshot,
	}, nil
}

// Close releases the browser and kills the launched process. Close is safe
// to call multiple times and before Initialize.
func (a *Analyzer) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if a.browser != nil {
		err = a.browser.Close()
		a.browser = nil
	}
	if a.launcher != nil {
		a.launcher.Kill()
		a.launcher = nil
	}
	return err
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (a *Analyzer) LauncherPID() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.launcher == nil {
		return 0
	}
	return a.launcher.PID()
}
