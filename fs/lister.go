// Package fs provides file-system access: listing the pages to analyze and
// storing analysis results.
package fs

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ListHTMLURLs returns baseURL + name for every immediate entry of dir whose
// name ends in ".html", in directory-read order. Percent-escapes in names
// are decoded; a name that does not decode is used as is.
func ListHTMLURLs(dir, baseURL string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to scan directory (%s): %w", dir, err)
	}

	var urls []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".html") {
			continue
		}
		if decoded, err := url.PathUnescape(name); err == nil {
			name = decoded
		}
		urls = append(urls, baseURL+name)
	}
	return urls, nil
}
