package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

// EnvFiles are loaded before the config file is expanded. Variables already set
// in the process environment win.
var EnvFiles = []string{".env", ".env.local"}

// Load reads the configuration at path. A missing file yields the defaults
// rooted at the file's directory. ${VAR} references are expanded after the
// .env files next to it are loaded.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve config path").
			WithContext("path", path).
			Build()
	}
	root := filepath.Dir(abs)

	if err := loadEnvFiles(root); err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(abs)
	switch {
	case os.IsNotExist(err):
		slog.Debug("Config file not found, using defaults", "path", abs)
	case err != nil:
		return nil, errors.FileSystemFailed("read", abs, err)
	default:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
				WithContext("path", abs).
				Build()
		}
	}

	cfg.Root = root
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFiles(dir string) error {
	for _, name := range EnvFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, fmt.Sprintf("load %s", name)).
				WithContext("path", p).
				Build()
		}
		slog.Debug("Loaded environment variables", "path", p)
	}
	return nil
}

// Resolve joins a configured relative path onto Root.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, filepath.FromSlash(p))
}
