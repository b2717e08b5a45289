// Package http serves the analyzed directory over HTTP and fetches pages
// from it for engines that do not render.
package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fwojciec/htmlanalyzer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds graceful shutdown in Close.
const ShutdownTimeout = 5 * time.Second

// contentTypes maps known file extensions to their Content-Type.
var contentTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".json": "application/json",
}

// ContentType returns the Content-Type served for a file name.
// Unknown extensions are served as application/octet-stream.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

var listingTmpl = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>{{.Title}}</title>
  </head>
  <body>
    <h1>{{.Heading}}</h1>
    <ul>
      {{- range .Links}}
      <li><a href="{{.Href}}">{{.Name}}</a></li>
      {{- end}}
    </ul>
  </body>
</html>
`))

type listing struct {
	Title   string
	Heading string
	Links   []link
}

type link struct {
	Href string
	Name string
}

// Server serves a single root directory over HTTP.
type Server struct {
	root      string
	addr      string
	htmlFiles []string
	logger    *slog.Logger

	ln        net.Listener
	server    *http.Server
	closeOnce sync.Once
	closeErr  error
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
// Defaults to htmlanalyzer.DefaultAddr if not specified.
func WithAddr(addr string) ServerOption {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithLogger sets the request logger.
// Requests are not logged if not specified.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server for root. It fails when root holds no
// top-level .html files.
func NewServer(root string, opts ...ServerOption) (*Server, error) {
	files, err := findHTMLFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "no HTML files found in %s", root)
	}

	s := &Server{
		root:      root,
		addr:      htmlanalyzer.DefaultAddr,
		htmlFiles: files,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// HTMLFiles returns the top-level .html files found at construction.
func (s *Server) HTMLFiles() []string {
	return s.htmlFiles
}

// Open binds the listening socket. A busy address fails immediately with
// ECONFLICT.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			_, port, _ := net.SplitHostPort(s.addr)
			return htmlanalyzer.Errorf(htmlanalyzer.ECONFLICT, "port %s is already in use", port)
		}
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.ln = ln
	return nil
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() error {
	if s.ln == nil {
		return htmlanalyzer.Errorf(htmlanalyzer.EINVALID, "server not open")
	}
	if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts the server down. Close is safe to call multiple times.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		s.closeErr = s.server.Shutdown(ctx)
		if s.ln != nil {
			// Shutdown only closes listeners that reached Serve.
			if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) && s.closeErr == nil {
				s.closeErr = err
			}
		}
	})
	return s.closeErr
}

// URL returns the base URL of the bound server, ending in "/".
func (s *Server) URL() string {
	if s.ln == nil {
		return "http://" + s.addr + "/"
	}
	return "http://" + s.ln.Addr().String() + "/"
}

// Handler returns the HTTP handler serving the root directory.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.GetHead)
	r.Get("/", s.handleIndex)
	r.Get("/*", s.handlePath)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	links := make([]link, len(s.htmlFiles))
	for i, name := range s.htmlFiles {
		links[i] = link{Href: "/" + name, Name: name}
	}
	s.writeListing(w, listing{Title: "HTML Files", Heading: "Available HTML Files:", Links: links})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	urlPath := path.Clean("/" + r.URL.Path)
	filePath := filepath.Join(s.root, filepath.FromSlash(urlPath))

	info, err := os.Stat(filePath)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if info.IsDir() {
		index := filepath.Join(filePath, "index.html")
		if _, err := os.Stat(index); err != nil {
			s.handleDirectory(w, r, urlPath, filePath)
			return
		}
		filePath = index
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ContentType(filePath))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request, urlPath, dir string) {
	files, err := findHTMLFiles(dir)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	links := make([]link, len(files))
	for i, name := range files {
		links[i] = link{Href: path.Join(urlPath, name), Name: name}
	}
	s.writeListing(w, listing{Title: "Directory Listing", Heading: "HTML Files in Directory:", Links: links})
}

func (s *Server) writeListing(w http.ResponseWriter, l listing) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if err := listingTmpl.Execute(w, l); err != nil {
		s.logger.Error("render listing", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	s.logger.Error("server error", "path", r.URL.Path, "err", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func(begin time.Time) {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(begin),
			)
		}(time.Now())
		next.ServeHTTP(ww, r)
	})
}

// findHTMLFiles lists the regular files directly inside dir whose extension
// is .html, in any letter case.
func findHTMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			files = append(files, e.Name())
		}
	}
	return files, nil
}
