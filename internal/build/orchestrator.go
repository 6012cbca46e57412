package build

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/compiler"
	"github.com/wpmoo-org/uibuild/internal/config"
	ferrors "github.com/wpmoo-org/uibuild/internal/foundation/errors"
	"github.com/wpmoo-org/uibuild/internal/logfields"
	"github.com/wpmoo-org/uibuild/internal/metrics"
	"github.com/wpmoo-org/uibuild/internal/minify"
	"github.com/wpmoo-org/uibuild/internal/observability"
	"github.com/wpmoo-org/uibuild/internal/pipeline"
)

// Graph names.
const (
	TaskStyles    = "styles"
	TaskPicoScope = "pico:scope"
	TaskLicenses  = "licenses"
	TaskClean     = "clean"
	TaskBuild     = "build"
	TaskDefault   = "default"
)

// CSSMatch selects the written files that trigger a stylesheet refresh.
const CSSMatch = "**/*.css"

// Streamer hands out notifiers for written files. *livereload.Hub satisfies it.
type Streamer interface {
	Stream(match string) pipeline.Notifier
}

// Orchestrator builds and runs the pipelines for one project.
type Orchestrator struct {
	cfg      *config.Config
	compiler compiler.Compiler
	minifier minify.Minifier
	streamer Streamer
	recorder metrics.Recorder
	now      func() time.Time

	// licenseMu serializes license copies, which several watch targets share.
	licenseMu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCompiler replaces the stylesheet compiler chosen from the config.
func WithCompiler(c compiler.Compiler) Option { return func(o *Orchestrator) { o.compiler = c } }

// WithMinifier replaces the default CSS minifier.
func WithMinifier(m minify.Minifier) Option { return func(o *Orchestrator) { o.minifier = m } }

// WithNotifier routes written stylesheets to s, typically the live-reload hub.
func WithNotifier(s Streamer) Option { return func(o *Orchestrator) { o.streamer = s } }

// WithRecorder sets the metrics recorder for stage timings and emitted files.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = metrics.OrNoop(r) }
}

// WithClock replaces the clock used for the banner year.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// NewOrchestrator returns an orchestrator for cfg. Without options it compiles
// with the sass executable and driver named in the config and minifies with the
// built-in CSS minifier.
func NewOrchestrator(cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.compiler == nil {
		o.compiler = compiler.New(cfg.Compile.CompilerDriver(), cfg.Compile.SassBinary)
	}
	if o.minifier == nil {
		o.minifier = minify.NewCSS()
	}
	return o
}

// Close releases the compiler when it holds a process open.
func (o *Orchestrator) Close() error {
	if c, ok := o.compiler.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() *config.Config { return o.cfg }

func (o *Orchestrator) notifier(match string) pipeline.Notifier {
	if o.streamer == nil {
		return nil
	}
	return o.streamer.Stream(match)
}

// StylesPipeline compiles, cleans up banners, minifies, stamps and writes the
// style entries.
func (o *Orchestrator) StylesPipeline() *pipeline.Pipeline {
	c := o.cfg.Compile
	return pipeline.New(TaskStyles,
		pipeline.Compile(o.compiler, compiler.Options{
			Style:     c.CompilerStyle(),
			LoadPaths: o.resolveAll(c.LoadPaths),
			QuietDeps: c.Quiet(),
		}),
		pipeline.Replace("strip-upstream-banner", pipeline.UpstreamBannerPattern, ""),
		pipeline.Replace("strip-own-banner", pipeline.OwnBannerPattern, ""),
		pipeline.Minify(o.minifier),
		pipeline.Banner(o.now),
		pipeline.Dest(o.cfg.Resolve(o.cfg.Paths.Styles.Dest), true),
		pipeline.Notify(o.notifier(CSSMatch)),
	).WithRecorder(o.recorder)
}

// PicoScopePipeline rewrites the vendor stylesheet into the project namespace.
func (o *Orchestrator) PicoScopePipeline() *pipeline.Pipeline {
	p := o.cfg.Paths.Pico
	return pipeline.New(TaskPicoScope,
		pipeline.Replace("scope-classes", pipeline.PicoClassPattern, ".wpmoo"),
		pipeline.Replace("scope-properties", pipeline.PicoVarPattern, "--wpmoo-"),
		pipeline.Rename(p.OutFile),
		pipeline.Dest(o.cfg.Resolve(p.Dest), false),
		pipeline.Notify(o.notifier(CSSMatch)),
	).WithRecorder(o.recorder)
}

// LicensesPipeline copies the vendor license under its distribution name.
func (o *Orchestrator) LicensesPipeline() *pipeline.Pipeline {
	l := o.cfg.Paths.License
	return pipeline.New(TaskLicenses,
		pipeline.Rename(l.OutFile),
		pipeline.Dest(o.cfg.Resolve(l.Dest), false),
	).WithRecorder(o.recorder)
}

// Styles runs the styles graph.
func (o *Orchestrator) Styles(ctx context.Context) error {
	return o.run(ctx, o.StylesPipeline(), o.cfg.Paths.Styles.Entries, true)
}

// PicoScope runs the vendor scoping graph. A missing vendor file is not an error.
func (o *Orchestrator) PicoScope(ctx context.Context) error {
	return o.run(ctx, o.PicoScopePipeline(), []string{o.cfg.Paths.Pico.Scoped}, false)
}

// Licenses copies the vendor license when it exists.
func (o *Orchestrator) Licenses(ctx context.Context) error {
	o.licenseMu.Lock()
	defer o.licenseMu.Unlock()

	src := o.cfg.Resolve(o.cfg.Paths.License.Src)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			observability.DebugContext(ctx, "license source missing, skipping", logfields.Path(src))
			return nil
		}
		return ferrors.FileSystemFailed("stat", src, err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return ferrors.FileSystemFailed("read", src, err)
	}
	f := asset.NewFile(filepath.Dir(src), src, data)
	_, err = o.LicensesPipeline().Run(ctx, []*asset.File{f})
	return err
}

// Clean removes the previous final stylesheet and its map.
func (o *Orchestrator) Clean(context.Context) error {
	s := o.cfg.Paths.Styles
	CleanOutput(filepath.Join(o.cfg.Resolve(s.Dest), s.FinalOut))
	return nil
}

func (o *Orchestrator) run(ctx context.Context, p *pipeline.Pipeline, patterns []string, withMaps bool) error {
	files, err := pipeline.Src(o.cfg.Root, patterns, withMaps)
	if err != nil {
		return err
	}
	out, err := p.Run(ctx, files)
	if err != nil {
		return err
	}
	for _, f := range out {
		observability.DebugContext(ctx, "emitted", logfields.Graph(p.Name()), logfields.Path(f.Path))
	}
	if len(files) == 0 {
		slog.Debug("no source files matched", logfields.Graph(p.Name()))
	}
	return nil
}

func (o *Orchestrator) resolveAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = o.cfg.Resolve(p)
	}
	return out
}
