package commands

import (
	"log/slog"

	"github.com/wpmoo-org/uibuild/internal/preview"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	a, err := newApp(root, false)
	if err != nil {
		return err
	}
	defer a.close()
	a.warnMissingSass()
	ctx, cancel := signalContext()
	defer cancel()
	return preview.Watch(ctx, preview.Session{Config: a.cfg, Runner: a.runner})
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port         int  `name:"port" help:"Server port (overrides serve.port)."`
	NoLiveReload bool `name:"no-live-reload" help:"Disable live reload and script injection."`
	NoMetrics    bool `name:"no-metrics" help:"Do not expose /metrics."`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	a, err := newApp(root, false)
	if err != nil {
		return err
	}
	live := a.cfg.Serve.LiveReloadEnabled() && !s.NoLiveReload
	if live {
		a.close()
		if a, err = newApp(root, true); err != nil {
			return err
		}
	}
	defer a.close()
	if s.Port != 0 {
		a.cfg.Serve.Port = s.Port
	}
	a.warnMissingSass()

	sess := preview.Session{Config: a.cfg, Runner: a.runner, Hub: a.hub}
	if a.cfg.Serve.MetricsEnabled() && !s.NoMetrics {
		sess.Registry = a.registry
	}
	if !live {
		slog.Info("Live reload disabled")
	}

	ctx, cancel := signalContext()
	defer cancel()
	return preview.Serve(ctx, sess)
}
