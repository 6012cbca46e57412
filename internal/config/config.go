// Package config loads the uibuild YAML configuration.
//
// Every field has a default matching the stock project layout, so a missing
// configuration file is not an error.
package config

import (
	"time"

	"github.com/wpmoo-org/uibuild/internal/compiler"
)

// DefaultConfigFile is the file name looked up when no path is given.
const DefaultConfigFile = "uibuild.yaml"

// Config is the root configuration document.
type Config struct {
	Paths   Paths         `yaml:"paths"`
	Compile CompileConfig `yaml:"compile"`
	Serve   ServeConfig   `yaml:"serve"`
	Watch   WatchConfig   `yaml:"watch"`

	// Root is the directory relative paths are resolved against. It is the
	// directory holding the config file and is not read from YAML.
	Root string `yaml:"-"`
}

// Paths is the table of source and destination locations.
type Paths struct {
	Styles  StylePaths   `yaml:"styles"`
	HTML    HTMLPaths    `yaml:"html"`
	Pico    PicoPaths    `yaml:"pico"`
	License LicensePaths `yaml:"license"`
}

type StylePaths struct {
	Entries []string `yaml:"entries"`
	Src     string   `yaml:"src"`
	Dest    string   `yaml:"dest"`
	// BridgeOut is the name of the intermediate bridge stylesheet. The build
	// does not write it; it is kept so layouts that reference it stay valid.
	BridgeOut string `yaml:"bridge_out"`
	FinalOut  string `yaml:"final_out"`
}

type HTMLPaths struct {
	Src   []string `yaml:"src"`
	Base  []string `yaml:"base"`
	Index string   `yaml:"index"`
}

type PicoPaths struct {
	Scoped  string `yaml:"scoped"`
	Dest    string `yaml:"dest"`
	OutFile string `yaml:"out_file"`
}

type LicensePaths struct {
	Src     string `yaml:"src"`
	Dest    string `yaml:"dest"`
	OutFile string `yaml:"out_file"`
}

// CompileConfig tunes the stylesheet compiler.
type CompileConfig struct {
	Style      string   `yaml:"style"`
	LoadPaths  []string `yaml:"load_paths"`
	QuietDeps  *bool    `yaml:"quiet_deps"`
	SassBinary string   `yaml:"sass_binary"`
	// Driver is "embedded" (one long-lived sass process) or "cli" (one run per file).
	Driver string `yaml:"driver"`
}

// ServeConfig configures the development server.
type ServeConfig struct {
	Port       int   `yaml:"port"`
	LiveReload *bool `yaml:"livereload"`
	Metrics    *bool `yaml:"metrics"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// CompilerStyle returns the normalized output style.
func (c CompileConfig) CompilerStyle() compiler.Style {
	return styleNormalizer.Normalize(c.Style)
}

// CompilerDriver returns the normalized compiler driver.
func (c CompileConfig) CompilerDriver() compiler.Driver {
	return driverNormalizer.Normalize(c.Driver)
}

// Quiet reports whether dependency warnings are silenced.
func (c CompileConfig) Quiet() bool { return boolOr(c.QuietDeps, true) }

// LiveReloadEnabled reports whether the live-reload hub is mounted.
func (s ServeConfig) LiveReloadEnabled() bool { return boolOr(s.LiveReload, true) }

// MetricsEnabled reports whether /metrics is served.
func (s ServeConfig) MetricsEnabled() bool { return boolOr(s.Metrics, true) }

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
