package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpmoo-org/uibuild/internal/compiler"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, DefaultConfigFile))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, []string{"scss/wpmoo.scss"}, cfg.Paths.Styles.Entries)
	assert.Equal(t, "scss/**/*.scss", cfg.Paths.Styles.Src)
	assert.Equal(t, "css", cfg.Paths.Styles.Dest)
	assert.Equal(t, "wpmoo.bridge.css", cfg.Paths.Styles.BridgeOut)
	assert.Equal(t, "wpmoo.css", cfg.Paths.Styles.FinalOut)
	assert.Equal(t, []string{"*.html"}, cfg.Paths.HTML.Src)
	assert.Equal(t, []string{"."}, cfg.Paths.HTML.Base)
	assert.Equal(t, "sample.html", cfg.Paths.HTML.Index)
	assert.Equal(t, "vendor/pico/css/pico.conditional.css", cfg.Paths.Pico.Scoped)
	assert.Equal(t, "dist/assets", cfg.Paths.Pico.Dest)
	assert.Equal(t, "pico-wpmoo.css", cfg.Paths.Pico.OutFile)
	assert.Equal(t, "vendor/pico/LICENSE.md", cfg.Paths.License.Src)
	assert.Equal(t, "dist", cfg.Paths.License.Dest)
	assert.Equal(t, "LICENSE-PICO.md", cfg.Paths.License.OutFile)

	assert.Equal(t, compiler.StyleExpanded, cfg.Compile.CompilerStyle())
	assert.Equal(t, []string{"node_modules"}, cfg.Compile.LoadPaths)
	assert.True(t, cfg.Compile.Quiet())
	assert.Equal(t, "sass", cfg.Compile.SassBinary)
	assert.Equal(t, compiler.DriverEmbedded, cfg.Compile.CompilerDriver())
	assert.Equal(t, 3000, cfg.Serve.Port)
	assert.True(t, cfg.Serve.LiveReloadEnabled())
	assert.True(t, cfg.Serve.MetricsEnabled())
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadOverridesAndEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("UIBUILD_TEST_DEST=public/css\nUIBUILD_TEST_PORT=9999\n"), 0o644))
	t.Setenv("UIBUILD_TEST_PORT", "4000")

	yml := `paths:
  styles:
    dest: ${UIBUILD_TEST_DEST}
compile:
  style: Compressed
  quiet_deps: false
  driver: CLI
serve:
  port: ${UIBUILD_TEST_PORT}
  metrics: false
watch:
  debounce: 1s
`
	path := filepath.Join(dir, "uibuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Unsetenv("UIBUILD_TEST_DEST") })

	assert.Equal(t, "public/css", cfg.Paths.Styles.Dest)
	assert.Equal(t, 4000, cfg.Serve.Port, "process environment wins over .env")
	assert.Equal(t, compiler.StyleCompressed, cfg.Compile.CompilerStyle())
	assert.False(t, cfg.Compile.Quiet())
	assert.Equal(t, compiler.DriverCLI, cfg.Compile.CompilerDriver())
	assert.False(t, cfg.Serve.MetricsEnabled())
	assert.True(t, cfg.Serve.LiveReloadEnabled())
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "wpmoo.css", cfg.Paths.Styles.FinalOut)
	assert.Equal(t, filepath.Join(dir, "public", "css"), cfg.Resolve(cfg.Paths.Styles.Dest))
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"bad style", "compile:\n  style: nested\n"},
		{"bad driver", "compile:\n  driver: libsass\n"},
		{"bad port", "serve:\n  port: 70000\n"},
		{"bad glob", "paths:\n  styles:\n    src: \"scss/[*.scss\"\n"},
		{"out file with dir", "paths:\n  pico:\n    out_file: sub/pico.css\n"},
		{"malformed yaml", "paths: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "uibuild.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yml), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestInitWritesLoadableDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uibuild.yaml")
	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.Paths, cfg.Paths)
	assert.Equal(t, def.Watch.Debounce, cfg.Watch.Debounce)
	assert.True(t, cfg.Compile.Quiet())
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}
