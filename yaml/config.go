// Package yaml loads htmlanalyzer configuration files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fwojciec/htmlanalyzer"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML file at path over htmlanalyzer.DefaultConfig.
// Keys absent from the file keep their defaults; unknown keys are rejected.
func LoadConfig(path string) (*htmlanalyzer.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, htmlanalyzer.Errorf(htmlanalyzer.ENOTFOUND, "config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML config data over htmlanalyzer.DefaultConfig and
// validates the result.
func ParseConfig(data []byte) (*htmlanalyzer.Config, error) {
	cfg := htmlanalyzer.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "invalid config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
