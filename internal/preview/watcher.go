package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/wpmoo-org/uibuild/internal/logfields"
)

// Target is a set of globs and the action run when a matching file changes.
type Target struct {
	Name string
	// Patterns are doublestar globs relative to the watch root.
	Patterns []string
	Run      func(ctx context.Context, changed []string)
}

// Watcher maps filesystem events under a root onto targets.
type Watcher struct {
	root    string
	targets []Target
	workers []*rebuildWorker
	fsw     *fsnotify.Watcher
}

// skippedDirs are never watched.
var skippedDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// NewWatcher prepares a watcher. debounce is the quiet window per target.
func NewWatcher(root string, debounce time.Duration, targets ...Target) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	if st, statErr := os.Stat(abs); statErr != nil || !st.IsDir() {
		return nil, fmt.Errorf("watch root not found or not a directory: %s", abs)
	}
	w := &Watcher{root: abs, targets: targets}
	for _, t := range targets {
		for _, p := range t.Patterns {
			if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
				return nil, fmt.Errorf("target %s: invalid pattern %q", t.Name, p)
			}
		}
		w.workers = append(w.workers, newRebuildWorker(t.Name, debounce, t.Run))
	}
	return w, nil
}

// Run watches until ctx is cancelled and waits for in-flight runs to finish.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()
	w.fsw = fsw
	if err := w.addDirsRecursive(w.root); err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, wk := range w.workers {
		wk.start(ctx, &wg)
	}
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(ev fsnotify.Event) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
			return
		}
	}
	if ev.Op == fsnotify.Chmod {
		return
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), "op", ev.Op.String())
	w.Handle(ev.Name)
}

// Handle triggers every target whose patterns match path.
func (w *Watcher) Handle(path string) {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(w.root, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return
		}
		rel = r
	}
	rel = filepath.ToSlash(rel)
	for i, t := range w.targets {
		if matchAny(t.Patterns, rel) {
			w.workers[i].trigger(rel)
		}
	}
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(filepath.ToSlash(p), rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && (skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Warn("watch add failed", "dir", path, logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp and swap files.
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
