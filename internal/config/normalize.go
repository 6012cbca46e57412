package config

import (
	"log/slog"

	"github.com/wpmoo-org/uibuild/internal/compiler"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
	"github.com/wpmoo-org/uibuild/internal/foundation/normalization"
)

var styleNormalizer = normalization.NewNormalizer(map[string]compiler.Style{
	"expanded":   compiler.StyleExpanded,
	"compressed": compiler.StyleCompressed,
}, compiler.StyleExpanded)

var driverNormalizer = normalization.NewNormalizer(map[string]compiler.Driver{
	"embedded": compiler.DriverEmbedded,
	"cli":      compiler.DriverCLI,
}, compiler.DriverEmbedded)

var logLevelNormalizer = normalization.NewNormalizer(map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}, slog.LevelInfo)

// ParseLogLevel maps a level name such as "debug" to a slog.Level. Empty input
// is info.
func ParseLogLevel(raw string) (slog.Level, error) {
	lvl, err := logLevelNormalizer.NormalizeWithError(raw)
	if err != nil {
		return slog.LevelInfo, errors.ConfigError("invalid log level").WithCause(err).Build()
	}
	return lvl, nil
}
