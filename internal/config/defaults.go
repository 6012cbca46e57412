package config

import (
	"time"

	"github.com/wpmoo-org/uibuild/internal/compiler"
)

const (
	DefaultPort     = 3000
	DefaultDebounce = 300 * time.Millisecond
)

// Default returns a configuration populated with every default.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	p := &cfg.Paths
	if len(p.Styles.Entries) == 0 {
		p.Styles.Entries = []string{"scss/wpmoo.scss"}
	}
	setDefault(&p.Styles.Src, "scss/**/*.scss")
	setDefault(&p.Styles.Dest, "css")
	setDefault(&p.Styles.BridgeOut, "wpmoo.bridge.css")
	setDefault(&p.Styles.FinalOut, "wpmoo.css")

	if len(p.HTML.Src) == 0 {
		p.HTML.Src = []string{"*.html"}
	}
	if len(p.HTML.Base) == 0 {
		p.HTML.Base = []string{"."}
	}
	setDefault(&p.HTML.Index, "sample.html")

	setDefault(&p.Pico.Scoped, "vendor/pico/css/pico.conditional.css")
	setDefault(&p.Pico.Dest, "dist/assets")
	setDefault(&p.Pico.OutFile, "pico-wpmoo.css")

	setDefault(&p.License.Src, "vendor/pico/LICENSE.md")
	setDefault(&p.License.Dest, "dist")
	setDefault(&p.License.OutFile, "LICENSE-PICO.md")

	setDefault(&cfg.Compile.Style, string(compiler.StyleExpanded))
	if cfg.Compile.LoadPaths == nil {
		cfg.Compile.LoadPaths = []string{"node_modules"}
	}
	setDefault(&cfg.Compile.SassBinary, compiler.DefaultSassBinary)
	setDefault(&cfg.Compile.Driver, string(compiler.DriverEmbedded))

	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = DefaultPort
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
