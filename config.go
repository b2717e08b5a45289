package htmlanalyzer

import "time"

// Default configuration values.
const (
	DefaultAddr      = "127.0.0.1:3000"
	DefaultOutputDir = "output"
	DefaultDevPath   = "samples"
)

// Config holds the settings of an analysis run.
type Config struct {
	// Addr is the address the static file server binds to.
	Addr string `yaml:"addr"`

	// OutputDir receives the JSON/PNG pairs.
	OutputDir string `yaml:"output_dir"`

	// DevPath replaces the directory argument in development mode.
	DevPath string `yaml:"dev_path"`

	// Static selects the browser-free engine.
	Static bool `yaml:"static"`

	Browser BrowserConfig `yaml:"browser"`
}

// BrowserConfig controls the headless browser.
type BrowserConfig struct {
	// Bin is the browser executable. Empty lets the launcher find or
	// download one.
	Bin string `yaml:"bin"`

	// Headful shows the browser window.
	Headful bool `yaml:"headful"`

	// Timeout bounds a single page analysis. Zero keeps engine defaults.
	Timeout time.Duration `yaml:"timeout"`

	// ViewportWidth and ViewportHeight override the page viewport when both
	// are positive.
	ViewportWidth  int `yaml:"viewport_width"`
	ViewportHeight int `yaml:"viewport_height"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		Addr:      DefaultAddr,
		OutputDir: DefaultOutputDir,
		DevPath:   DefaultDevPath,
	}
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return Errorf(EINVALID, "server address required")
	}
	if c.OutputDir == "" {
		return Errorf(EINVALID, "output directory required")
	}
	if c.Browser.Timeout < 0 {
		return Errorf(EINVALID, "browser timeout must not be negative")
	}
	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return Errorf(EINVALID, "viewport size must not be negative")
	}
	return nil
}
