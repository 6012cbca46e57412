package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

// Init writes a configuration file populated with the defaults.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).
			Build()
	}

	cfg := Default()
	quiet, live, metrics := cfg.Compile.Quiet(), cfg.Serve.LiveReloadEnabled(), cfg.Serve.MetricsEnabled()
	cfg.Compile.QuietDeps = &quiet
	cfg.Serve.LiveReload = &live
	cfg.Serve.Metrics = &metrics

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileSystemFailed("write", path, err)
	}
	return nil
}
