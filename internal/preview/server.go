package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wpmoo-org/uibuild/internal/livereload"
	"github.com/wpmoo-org/uibuild/internal/logfields"
	"github.com/wpmoo-org/uibuild/internal/metrics"
)

// ServerConfig describes what the development server exposes.
type ServerConfig struct {
	// BaseDirs are searched in order for each requested file.
	BaseDirs []string
	// Index is served for directory requests.
	Index string
	// Hub enables /livereload, /livereload.js and script injection when set.
	Hub *livereload.Hub
	// Registry enables /metrics when set.
	Registry *prometheus.Registry
}

// Server is the static development server.
type Server struct {
	cfg ServerConfig
	srv *http.Server
}

// NewServer returns a server for cfg, serving index.html when Index is empty.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Index == "" {
		cfg.Index = "index.html"
	}
	return &Server{cfg: cfg}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	var files http.Handler = &staticHandler{dirs: s.cfg.BaseDirs, index: s.cfg.Index}
	if s.cfg.Hub != nil {
		mux.Handle(livereload.EventsPath, s.cfg.Hub)
		mux.Handle(livereload.ScriptPath, livereload.ScriptHandler())
		files = livereload.Inject(files)
	}
	if s.cfg.Registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.cfg.Registry))
	}
	mux.Handle("/", files)
	return mux
}

// Start listens on addr and serves until ctx is cancelled. The returned
// address is the bound listener address.
func (s *Server) Start(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	// No write timeout: SSE connections are long lived.
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 300 * time.Second}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("preview server failed", logfields.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return ln.Addr(), nil
}

// Stop shuts the server down, giving open requests five seconds.
func (s *Server) Stop() {
	if s.srv == nil {
		return
	}
	if s.cfg.Hub != nil {
		s.cfg.Hub.Shutdown()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
}

// staticHandler serves files from the first base directory that has them.
type staticHandler struct {
	dirs  []string
	index string
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	clean := path.Clean("/" + r.URL.Path)
	for _, dir := range h.dirs {
		p := filepath.Join(dir, filepath.FromSlash(clean))
		st, err := os.Stat(p)
		if err != nil {
			continue
		}
		if st.IsDir() {
			p = filepath.Join(p, h.index)
			if st, err = os.Stat(p); err != nil || st.IsDir() {
				continue
			}
		}
		h.serveFile(w, r, p, st.ModTime())
		return
	}
	http.NotFound(w, r)
}

func (h *staticHandler) serveFile(w http.ResponseWriter, r *http.Request, p string, mod time.Time) {
	f, err := os.Open(p)
	if err != nil {
		http.Error(w, "cannot open file", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()
	w.Header().Set("Cache-Control", "no-cache")
	if strings.HasSuffix(p, ".css") {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
	}
	http.ServeContent(w, r, filepath.Base(p), mod, f)
}
