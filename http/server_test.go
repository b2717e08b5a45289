package http_test

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/htmlanalyzer"
	analyzerhttp "github.com/fwojciec/htmlanalyzer/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates files under dir, creating parent directories as needed.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

// newTestServer serves dir through an httptest server.
func newTestServer(t *testing.T, dir string) *httptest.Server {
	t.Helper()
	s, err := analyzerhttp.NewServer(dir)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("fails when the directory holds no HTML files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"style.css": "body{}", "sub/page.html": "<p>"})

		_, err := analyzerhttp.NewServer(dir)

		require.Error(t, err)
		assert.Equal(t, htmlanalyzer.EINVALID, htmlanalyzer.ErrorCode(err))
		assert.Equal(t, "no HTML files found in "+dir, htmlanalyzer.ErrorMessage(err))
	})

	t.Run("fails when the directory does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := analyzerhttp.NewServer(filepath.Join(t.TempDir(), "missing"))

		require.Error(t, err)
	})

	t.Run("captures top-level HTML files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"b.html": "", "a.HTML": "", "c.txt": "", "sub/d.html": ""})

		s, err := analyzerhttp.NewServer(dir)

		require.NoError(t, err)
		assert.Equal(t, []string{"a.HTML", "b.html"}, s.HTMLFiles())
	})
}

func TestServer_Index(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.html": "", "b.html": "", "notes.txt": ""})
	ts := newTestServer(t, dir)

	resp, body := get(t, ts.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<title>HTML Files</title>")
	assert.Contains(t, body, "<h1>Available HTML Files:</h1>")
	assert.Contains(t, body, `<li><a href="/a.html">a.html</a></li>`)
	assert.Contains(t, body, `<li><a href="/b.html">b.html</a></li>`)
	assert.NotContains(t, body, "notes.txt")
}

func TestServer_Files(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.html":            "<h1>A</h1>",
		"css/site.css":      "body{}",
		"js/app.js":         "let x",
		"img/logo.svg":      "<svg/>",
		"data.bin":          "raw",
		"docs/index.html":   "<h1>Docs</h1>",
		"pages/one.html":    "",
		"pages/two.html":    "",
		"pages/readme.md":   "",
		"with space/x.html": "<p>x</p>",
	})
	ts := newTestServer(t, dir)

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		body        string
	}{
		{name: "html file", path: "/a.html", status: http.StatusOK, contentType: "text/html", body: "<h1>A</h1>"},
		{name: "stylesheet", path: "/css/site.css", status: http.StatusOK, contentType: "text/css", body: "body{}"},
		{name: "script", path: "/js/app.js", status: http.StatusOK, contentType: "text/javascript", body: "let x"},
		{name: "svg", path: "/img/logo.svg", status: http.StatusOK, contentType: "image/svg+xml", body: "<svg/>"},
		{name: "unknown extension", path: "/data.bin", status: http.StatusOK, contentType: "application/octet-stream", body: "raw"},
		{name: "directory index", path: "/docs/", status: http.StatusOK, contentType: "text/html", body: "<h1>Docs</h1>"},
		{name: "escaped path", path: "/with%20space/x.html", status: http.StatusOK, contentType: "text/html", body: "<p>x</p>"},
		{name: "missing file", path: "/missing.html", status: http.StatusNotFound, body: "Not Found\n"},
		{name: "traversal stays under root", path: "/../../etc/passwd", status: http.StatusNotFound, body: "Not Found\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, body := get(t, ts.URL+tt.path)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.body, body)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
				assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			}
		})
	}

	t.Run("directory without index lists its HTML files", func(t *testing.T) {
		t.Parallel()

		resp, body := get(t, ts.URL+"/pages")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "<title>Directory Listing</title>")
		assert.Contains(t, body, "<h1>HTML Files in Directory:</h1>")
		assert.Contains(t, body, `<a href="/pages/one.html">one.html</a>`)
		assert.Contains(t, body, `<a href="/pages/two.html">two.html</a>`)
		assert.NotContains(t, body, "readme.md")
	})

	t.Run("path under a file is a server error", func(t *testing.T) {
		t.Parallel()

		resp, body := get(t, ts.URL+"/a.html/child")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal Server Error\n", body)
	})
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"index.html": "text/html",
		"INDEX.HTML": "text/html",
		"a.css":      "text/css",
		"a.js":       "text/javascript",
		"a.png":      "image/png",
		"a.jpg":      "image/jpeg",
		"a.jpeg":     "image/jpeg",
		"a.gif":      "image/gif",
		"a.svg":      "image/svg+xml",
		"a.ico":      "image/x-icon",
		"a.json":     "application/json",
		"a.woff2":    "application/octet-stream",
		"Makefile":   "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, analyzerhttp.ContentType(name), name)
	}
}

func TestServer_Lifecycle(t *testing.T) {
	t.Parallel()

	t.Run("serves until closed", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.html": "<p>a</p>"})
		s, err := analyzerhttp.NewServer(dir, analyzerhttp.WithAddr("127.0.0.1:0"))
		require.NoError(t, err)
		require.NoError(t, s.Open())

		done := make(chan error, 1)
		go func() { done <- s.Serve() }()

		resp, body := get(t, s.URL()+"a.html")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "<p>a</p>", body)

		require.NoError(t, s.Close())
		require.NoError(t, <-done)
		require.NoError(t, s.Close())
	})

	t.Run("reports a busy port as a conflict", func(t *testing.T) {
		t.Parallel()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()
		_, port, err := net.SplitHostPort(ln.Addr().String())
		require.NoError(t, err)

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.html": ""})
		s, err := analyzerhttp.NewServer(dir, analyzerhttp.WithAddr(ln.Addr().String()))
		require.NoError(t, err)

		err = s.Open()

		require.Error(t, err)
		assert.Equal(t, htmlanalyzer.ECONFLICT, htmlanalyzer.ErrorCode(err))
		assert.Equal(t, "port "+port+" is already in use", htmlanalyzer.ErrorMessage(err))
	})

	t.Run("serve before open fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.html": ""})
		s, err := analyzerhttp.NewServer(dir)
		require.NoError(t, err)

		require.Error(t, s.Serve())
	})
}
