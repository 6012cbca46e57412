package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/godartsass/v2"
)

const transpilerTimeout = 2 * time.Minute

// Embedded compiles through the Dart Sass embedded protocol. One sass process
// is started on first use and reused until Close, so a watch session does not
// pay a process start per rebuild.
type Embedded struct {
	binary string
	quiet  atomic.Bool

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

// NewEmbedded returns a compiler that runs binary with --embedded, or
// DefaultSassBinary when empty.
func NewEmbedded(binary string) *Embedded {
	if binary == "" {
		binary = DefaultSassBinary
	}
	return &Embedded{binary: binary}
}

// Available reports whether the executable can be found.
func (e *Embedded) Available() bool { return BinaryAvailable(e.binary) }

// Compile reads path and compiles it. Relative loads resolve against the
// directory of path, then against opts.LoadPaths.
func (e *Embedded) Compile(ctx context.Context, path string, opts Options) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, &Error{Path: path, Err: err}
	}
	t, err := e.start()
	if err != nil {
		return Result{}, &Error{Path: path, Message: fmt.Sprintf("start sass: %v", err), Err: err}
	}
	e.quiet.Store(opts.QuietDeps)

	args := embeddedArgs(path, string(src), opts)
	type outcome struct {
		res godartsass.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := t.Execute(args)
		done <- outcome{res, err}
	}()

	slog.Debug("Compiling with embedded sass", "path", path, "style", opts.Style)
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case o := <-done:
		if o.err != nil {
			if errors.Is(o.err, godartsass.ErrShutdown) {
				e.reset(t)
			}
			return Result{}, &Error{Path: path, Message: o.err.Error(), Err: o.err}
		}
		res := Result{CSS: o.res.CSS}
		if opts.SourceMap && o.res.SourceMap != "" {
			res.SourceMap = []byte(o.res.SourceMap)
		}
		return res, nil
	}
}

// Close stops the sass process, if one was started.
func (e *Embedded) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.transpiler == nil {
		return nil
	}
	err := e.transpiler.Close()
	e.transpiler = nil
	return err
}

func (e *Embedded) start() (*godartsass.Transpiler, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.transpiler != nil {
		return e.transpiler, nil
	}
	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: e.binary,
		Timeout:                  transpilerTimeout,
		LogEventHandler:          e.logEvent,
	})
	if err != nil {
		return nil, err
	}
	e.transpiler = t
	return t, nil
}

// reset forgets a transpiler whose process died so the next call starts a new one.
func (e *Embedded) reset(t *godartsass.Transpiler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.transpiler == t {
		_ = t.Close()
		e.transpiler = nil
	}
}

func (e *Embedded) logEvent(ev godartsass.LogEvent) {
	switch {
	case ev.Type == godartsass.LogEventTypeDebug:
		slog.Debug("sass", "message", ev.Message)
	case ev.Type == godartsass.LogEventTypeDeprecated && e.quiet.Load():
		slog.Debug("sass deprecation", "message", ev.Message)
	default:
		slog.Warn("sass reported a warning", "message", ev.Message)
	}
}

func embeddedArgs(path, src string, opts Options) godartsass.Args {
	style := godartsass.OutputStyleExpanded
	if opts.Style == StyleCompressed {
		style = godartsass.OutputStyleCompressed
	}
	includes := append([]string{filepath.Dir(path)}, opts.LoadPaths...)
	return godartsass.Args{
		Source:                  src,
		URL:                     fileURL(path),
		OutputStyle:             style,
		SourceSyntax:            syntaxFor(path),
		IncludePaths:            includes,
		EnableSourceMap:         opts.SourceMap,
		SourceMapIncludeSources: opts.SourceMapIncludeSources,
	}
}

func syntaxFor(path string) godartsass.SourceSyntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sass":
		return godartsass.SourceSyntaxSASS
	case ".css":
		return godartsass.SourceSyntaxCSS
	default:
		return godartsass.SourceSyntaxSCSS
	}
}

func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return "file://" + slashed
}
