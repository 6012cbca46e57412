package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wpmoo-org/uibuild/internal/build"
	"github.com/wpmoo-org/uibuild/internal/compiler"
	"github.com/wpmoo-org/uibuild/internal/config"
	"github.com/wpmoo-org/uibuild/internal/livereload"
	"github.com/wpmoo-org/uibuild/internal/metrics"
)

// LogLevelEnv overrides the default log level when -v is not given.
const LogLevelEnv = "UIBUILD_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"uibuild.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build     BuildCmd     `cmd:"" default:"1" help:"Clean, compile styles and copy licenses (default)"`
	Styles    StylesCmd    `cmd:"" help:"Compile, minify and stamp the style entries"`
	PicoScope PicoScopeCmd `cmd:"" name:"pico:scope" aliases:"pico-scope" help:"Rewrite the vendor stylesheet into the wpmoo namespace"`
	Licenses  LicensesCmd  `cmd:"" help:"Copy third-party licenses into the distribution"`
	Clean     CleanCmd     `cmd:"" help:"Remove the previous stylesheet output and its source map"`
	Run       RunCmd       `cmd:"" help:"Run one or more tasks in series"`
	Watch     WatchCmd     `cmd:"" help:"Build, then rebuild styles whenever a source changes"`
	Serve     ServeCmd     `cmd:"" help:"Build, serve the pages with live reload and rebuild on change"`
	Init      InitCmd      `cmd:"" help:"Write a configuration file with the defaults"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level, err := config.ParseLogLevel(os.Getenv(LogLevelEnv))
	if err != nil {
		return err
	}
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if g != nil {
		g.Logger = logger
	}
	return nil
}

// app holds the services one command invocation needs.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	hub      *livereload.Hub
	orch     *build.Orchestrator
	runner   *build.Runner
}

// newApp loads the configuration and wires the orchestrator. withHub constructs
// the live-reload hub and routes written stylesheets to it.
func newApp(root *CLI, withHub bool, opts ...build.Option) (*app, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	a := &app{cfg: cfg, registry: reg}

	buildOpts := []build.Option{build.WithRecorder(rec)}
	if withHub {
		a.hub = livereload.NewHub(livereload.Config{Recorder: rec})
		buildOpts = append(buildOpts, build.WithNotifier(a.hub))
	}
	buildOpts = append(buildOpts, opts...)

	a.orch = build.NewOrchestrator(cfg, buildOpts...)
	a.runner = build.NewTaskRunner(a.orch, build.WithRunnerRecorder(rec))
	return a, nil
}

// close stops the sass process the orchestrator may have started.
func (a *app) close() {
	if err := a.orch.Close(); err != nil {
		slog.Debug("closing compiler", "error", err)
	}
}

// warnMissingSass logs when the configured sass executable cannot be found.
func (a *app) warnMissingSass() {
	if !compiler.BinaryAvailable(a.cfg.Compile.SassBinary) {
		slog.Warn("sass executable not found; style compilation will fail", "binary", a.cfg.Compile.SassBinary)
	}
}

// runTasks loads the project and runs the named tasks in series.
func runTasks(root *CLI, names ...string) error {
	a, err := newApp(root, false)
	if err != nil {
		return err
	}
	defer a.close()
	ctx, cancel := signalContext()
	defer cancel()
	return a.runner.Run(ctx, names...)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
