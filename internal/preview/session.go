package preview

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wpmoo-org/uibuild/internal/build"
	"github.com/wpmoo-org/uibuild/internal/config"
	"github.com/wpmoo-org/uibuild/internal/livereload"
	"github.com/wpmoo-org/uibuild/internal/logfields"
)

// Session carries the services shared by watch and serve.
type Session struct {
	Config *config.Config
	Runner *build.Runner
	// Hub is optional; serve without it skips live reload.
	Hub *livereload.Hub
	// Registry is optional; serve without it skips /metrics.
	Registry *prometheus.Registry
}

// Watch builds once, then rebuilds styles whenever a style source changes.
// It blocks until ctx is cancelled. A failed initial build is returned.
func Watch(ctx context.Context, s Session) error {
	if err := s.Runner.Run(ctx, build.TaskBuild); err != nil {
		return err
	}
	cfg := s.Config
	w, err := NewWatcher(cfg.Root, cfg.Watch.Debounce, Target{
		Name:     build.TaskStyles,
		Patterns: []string{cfg.Paths.Styles.Src},
		Run:      s.rebuild(build.TaskStyles),
	})
	if err != nil {
		return err
	}
	slog.Info("Watching for changes", logfields.Path(cfg.Root), "pattern", cfg.Paths.Styles.Src)
	return w.Run(ctx)
}

// Serve builds once, starts the development server and live reload, and
// rebuilds on change until ctx is cancelled. A failed initial build is logged
// and the server starts anyway so the next edit can fix it.
func Serve(ctx context.Context, s Session) error {
	cfg := s.Config
	if err := s.Runner.Run(ctx, build.TaskBuild); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("initial build failed", logfields.Error(err))
	}

	targets := []Target{
		{Name: build.TaskStyles, Patterns: []string{cfg.Paths.Styles.Src}, Run: s.rebuild(build.TaskStyles, build.TaskLicenses)},
		{Name: build.TaskPicoScope, Patterns: []string{cfg.Paths.Pico.Scoped}, Run: s.rebuild(build.TaskPicoScope, build.TaskLicenses)},
	}
	if s.Hub != nil {
		targets = append(targets, Target{Name: "pages", Patterns: PagePatterns(cfg), Run: s.reload})
	}
	w, err := NewWatcher(cfg.Root, cfg.Watch.Debounce, targets...)
	if err != nil {
		return err
	}

	server := NewServer(ServerConfig{
		BaseDirs: BaseDirs(cfg),
		Index:    cfg.Paths.HTML.Index,
		Hub:      s.Hub,
		Registry: s.Registry,
	})
	addr, err := server.Start(ctx, fmt.Sprintf(":%d", cfg.Serve.Port))
	if err != nil {
		return err
	}
	defer server.Stop()
	slog.Info("Preview server listening", "addr", addr.String(), "url", fmt.Sprintf("http://localhost:%d/", cfg.Serve.Port))

	return w.Run(ctx)
}

// BaseDirs resolves the configured page directories followed by the project
// root, without duplicates.
func BaseDirs(cfg *config.Config) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, d := range append(append([]string(nil), cfg.Paths.HTML.Base...), ".") {
		abs, err := filepath.Abs(cfg.Resolve(d))
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		dirs = append(dirs, abs)
	}
	return dirs
}

// PagePatterns returns the globs whose changes trigger a full page reload.
func PagePatterns(cfg *config.Config) []string {
	patterns := append([]string(nil), cfg.Paths.HTML.Src...)
	for _, p := range patterns {
		if p == cfg.Paths.HTML.Index {
			return patterns
		}
	}
	return append(patterns, cfg.Paths.HTML.Index)
}

func (s Session) rebuild(tasks ...string) func(ctx context.Context, changed []string) {
	return func(ctx context.Context, changed []string) {
		slog.Info("Change detected; rebuilding", logfields.Task(strings.Join(tasks, ",")), logfields.Files(len(changed)))
		if err := s.Runner.Run(ctx, tasks...); err != nil && ctx.Err() == nil {
			slog.Warn("rebuild failed", logfields.Error(err))
		}
	}
}

func (s Session) reload(_ context.Context, changed []string) {
	slog.Debug("Page changed; reloading browsers", logfields.Files(len(changed)))
	s.Hub.Reload()
}
