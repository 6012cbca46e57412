package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

// Validate checks the configuration after defaults were applied.
func (c *Config) Validate() error {
	if _, err := styleNormalizer.NormalizeWithError(c.Compile.Style); err != nil {
		return errors.ConfigError("invalid compile.style").
			WithCause(err).
			WithContext("field", "compile.style").
			Build()
	}
	if _, err := driverNormalizer.NormalizeWithError(c.Compile.Driver); err != nil {
		return errors.ConfigError("invalid compile.driver").
			WithCause(err).
			WithContext("field", "compile.driver").
			Build()
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return errors.ConfigError(fmt.Sprintf("serve.port must be between 1 and 65535, got %d", c.Serve.Port)).
			WithContext("field", "serve.port").
			Build()
	}
	if c.Watch.Debounce < 0 {
		return errors.ConfigError("watch.debounce must not be negative").
			WithContext("field", "watch.debounce").
			Build()
	}

	globs := map[string][]string{
		"paths.styles.entries": c.Paths.Styles.Entries,
		"paths.styles.src":     {c.Paths.Styles.Src},
		"paths.html.src":       c.Paths.HTML.Src,
		"paths.pico.scoped":    {c.Paths.Pico.Scoped},
	}
	for field, patterns := range globs {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
				return errors.ConfigError(fmt.Sprintf("%s: invalid glob %q", field, p)).
					WithContext("field", field).
					Build()
			}
		}
	}

	names := map[string]string{
		"paths.styles.final_out": c.Paths.Styles.FinalOut,
		"paths.pico.out_file":    c.Paths.Pico.OutFile,
		"paths.license.out_file": c.Paths.License.OutFile,
	}
	for field, name := range names {
		if strings.ContainsAny(name, `/\`) {
			return errors.ConfigError(fmt.Sprintf("%s must be a file name, got %q", field, name)).
				WithContext("field", field).
				Build()
		}
	}
	return nil
}
