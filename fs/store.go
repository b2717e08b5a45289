package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/htmlanalyzer"
)

// Ensure ResultStore implements htmlanalyzer.ResultStore at compile time.
var _ htmlanalyzer.ResultStore = (*ResultStore)(nil)

// ResultStore writes each result as <name>.json and <name>.png into a
// directory. Every file is written to a temporary file first and renamed
// into place, so readers never see a partial file.
type ResultStore struct {
	dir string
}

// NewResultStore creates a new ResultStore writing into dir.
func NewResultStore(dir string) *ResultStore {
	return &ResultStore{dir: dir}
}

// Dir returns the output directory.
func (s *ResultStore) Dir() string {
	return s.dir
}

// Save writes the analysis JSON and, when present, the screenshot PNG.
func (s *ResultStore) Save(ctx context.Context, name string, result *htmlanalyzer.Result) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil || result.Analysis == nil {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "result has no analysis")
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "invalid output name %q", name)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}

	content, err := FormatAnalysis(result.Analysis)
	if err != nil {
		return nil, err
	}

	jsonPath := filepath.Join(s.dir, name+".json")
	if err := writeFileAtomic(jsonPath, content); err != nil {
		return nil, err
	}
	paths := []string{jsonPath}

	if len(result.Screenshot) > 0 {
		pngPath := filepath.Join(s.dir, name+".png")
		if err := writeFileAtomic(pngPath, result.Screenshot); err != nil {
			return paths, err
		}
		paths = append(paths, pngPath)
	}

	return paths, nil
}

// FormatAnalysis renders an analysis as 2-space indented JSON.
func FormatAnalysis(a *htmlanalyzer.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(name string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, name); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// SanitizeFilename replaces each character that is unsafe in file names
// (< > : " / \ | ? * and control characters 0x00-0x1F) with '_'.
func SanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20:
			return '_'
		case strings.ContainsRune(`<>:"/\|?*`, r):
			return '_'
		}
		return r
	}, s)
}

// OutputName returns the base name for a page's output files: the sanitized
// title, or the page's file stem when the title is empty.
func OutputName(title, pageURL string) string {
	if name := SanitizeFilename(title); name != "" && name != "." && name != ".." {
		return name
	}
	return SanitizeFilename(URLStem(pageURL))
}

// URLStem returns the last path segment of a URL without its extension.
// Example: http://127.0.0.1:3000/docs/intro.html → intro
func URLStem(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	base := path.Base(p)
	if base == "/" || base == "." || base == "" {
		return "index"
	}
	if stem := strings.TrimSuffix(base, path.Ext(base)); stem != "" {
		return stem
	}
	return base
}
