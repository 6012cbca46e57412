package build

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/compiler"
	"github.com/wpmoo-org/uibuild/internal/config"
	"github.com/wpmoo-org/uibuild/internal/pipeline"
)

// passthroughCompiler returns the source text as CSS and never produces a map.
func passthroughCompiler() compiler.Compiler {
	return compiler.Func(func(_ context.Context, path string, _ compiler.Options) (compiler.Result, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return compiler.Result{}, err
		}
		return compiler.Result{CSS: string(data)}, nil
	})
}

type recordingStreamer struct{ paths []string }

func (s *recordingStreamer) Stream(match string) pipeline.Notifier {
	return pipeline.NotifierFunc(func(p string) {
		if strings.HasSuffix(p, ".css") && match == CSSMatch {
			s.paths = append(s.paths, p)
		}
	})
}

func writeProjectFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out[p] = string(data) + "|" + info.ModTime().String()
		return nil
	})
	require.NoError(t, err)
	return out
}

func newProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg, err := config.Load(filepath.Join(root, config.DefaultConfigFile))
	require.NoError(t, err)
	return root, cfg
}

func fixedClock() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestBuildEndToEnd(t *testing.T) {
	root, cfg := newProject(t)
	writeProjectFile(t, root, "scss/wpmoo.scss", "body { color: red; }")
	writeProjectFile(t, root, "scss/_partial.scss", "$x: 1;")
	writeProjectFile(t, root, "vendor/pico/css/pico.conditional.css", ".pico { --pico-x: 1; }")
	writeProjectFile(t, root, "vendor/pico/LICENSE.md", "MIT License")
	writeProjectFile(t, root, "css/wpmoo.css.map", "stale")

	vendorBefore := snapshotTree(t, filepath.Join(root, "vendor"))

	streamer := &recordingStreamer{}
	o := NewOrchestrator(cfg,
		WithCompiler(passthroughCompiler()),
		WithNotifier(streamer),
		WithClock(fixedClock),
	)
	var buf bytes.Buffer
	r := NewTaskRunner(o, WithOutput(&buf))
	require.NoError(t, r.Run(context.Background(), TaskBuild))

	data, err := os.ReadFile(filepath.Join(root, "css", "wpmoo.css"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, pipeline.BannerText(2026)), text)
	assert.True(t, strings.HasSuffix(text, "body{color:red}"), text)
	assert.NoFileExists(t, filepath.Join(root, "css", "wpmoo.css.map"), "clean removes the stale map and no new one is written")
	assert.NoFileExists(t, filepath.Join(root, "css", "_partial.css"))

	license, err := os.ReadFile(filepath.Join(root, "dist", "LICENSE-PICO.md"))
	require.NoError(t, err)
	assert.Equal(t, "MIT License", string(license))

	assert.Equal(t, vendorBefore, snapshotTree(t, filepath.Join(root, "vendor")))
	assert.NoFileExists(t, filepath.Join(root, "dist", "assets", "pico-wpmoo.css"), "build does not scope the vendor stylesheet")
	assert.Equal(t, []string{filepath.Join(root, "css", "wpmoo.css")}, streamer.paths)

	log := buf.String()
	for _, task := range []string{TaskBuild, TaskClean, TaskStyles, TaskLicenses} {
		assert.Contains(t, log, "Finished '"+task+"'")
	}
}

func TestStylesRebuildStripsBanners(t *testing.T) {
	root, cfg := newProject(t)
	stale := pipeline.BannerText(2020)
	upstream := "/*!\n * Pico CSS v2.0.6 (https://picocss.com)\n */\n"
	writeProjectFile(t, root, "scss/wpmoo.scss", upstream+stale+"a { margin: 0; }")

	o := NewOrchestrator(cfg, WithCompiler(passthroughCompiler()), WithClock(fixedClock))
	require.NoError(t, o.Styles(context.Background()))

	data, err := os.ReadFile(filepath.Join(root, "css", "wpmoo.css"))
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, 1, strings.Count(text, pipeline.BannerMarker))
	assert.NotContains(t, text, "2020")
	assert.NotContains(t, text, "Pico CSS v2")
	assert.True(t, strings.HasSuffix(text, "a{margin:0}"), text)
}

func TestStylesWritesSourceMap(t *testing.T) {
	root, cfg := newProject(t)
	writeProjectFile(t, root, "scss/wpmoo.scss", "body { color: red; }")
	entry := filepath.Join(root, "scss", "wpmoo.scss")

	var got compiler.Options
	c := compiler.Func(func(_ context.Context, _ string, opts compiler.Options) (compiler.Result, error) {
		got = opts
		return compiler.Result{
			CSS:       "body { color: red; }",
			SourceMap: []byte(`{"version":3,"sources":["file://` + filepath.ToSlash(entry) + `"],"names":[],"mappings":"AAAA"}`),
		}, nil
	})
	o := NewOrchestrator(cfg, WithCompiler(c), WithClock(fixedClock))
	require.NoError(t, o.Styles(context.Background()))

	assert.True(t, got.SourceMap)
	assert.True(t, got.QuietDeps)
	assert.Equal(t, []string{filepath.Join(root, "node_modules")}, got.LoadPaths)

	css, err := os.ReadFile(filepath.Join(root, "css", "wpmoo.css"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(css), "\n/*# sourceMappingURL=wpmoo.css.map */"))

	raw, err := os.ReadFile(filepath.Join(root, "css", "wpmoo.css.map"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sources":["wpmoo.scss"]`)
	assert.Contains(t, string(raw), `"sourceRoot":"../scss"`)
	assert.Contains(t, string(raw), `"file":"wpmoo.css"`)
}

// mappedCompiler returns two expanded rules and a map placing rule "a" on
// source line 0 and rule "b" on source line 4.
func mappedCompiler(entry string) compiler.Compiler {
	return compiler.Func(func(context.Context, string, compiler.Options) (compiler.Result, error) {
		return compiler.Result{
			CSS: "a {\n  color: red;\n}\n\nb {\n  color: blue;\n}\n",
			SourceMap: []byte(`{"version":3,"sources":["file://` + filepath.ToSlash(entry) +
				`"],"names":[],"mappings":"AAAA;EACE;;;AAGF;EACE"}`),
		}, nil
	})
}

func TestBuildEndToEndWithSourceMap(t *testing.T) {
	root, cfg := newProject(t)
	writeProjectFile(t, root, "scss/wpmoo.scss", "a { color: red; }\n\n\n\nb { color: blue; }\n")
	entry := filepath.Join(root, "scss", "wpmoo.scss")

	o := NewOrchestrator(cfg, WithCompiler(mappedCompiler(entry)), WithClock(fixedClock))
	require.NoError(t, NewTaskRunner(o, WithOutput(&bytes.Buffer{})).Run(context.Background(), TaskBuild))

	data, err := os.ReadFile(filepath.Join(root, "css", "wpmoo.css"))
	require.NoError(t, err)
	banner := pipeline.BannerText(2026)
	css := "a{color:red}b{color:blue}"
	assert.Equal(t, banner+css+"\n/*# sourceMappingURL=wpmoo.css.map */", string(data))

	raw, err := os.ReadFile(filepath.Join(root, "css", "wpmoo.css.map"))
	require.NoError(t, err)
	sm, err := asset.ParseSourceMap(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"wpmoo.scss"}, sm.Sources)
	assert.Equal(t, "wpmoo.css", sm.File)

	lines, err := asset.DecodeMappings(sm.Mappings)
	require.NoError(t, err)
	cssLine := strings.Count(banner, "\n")
	require.Greater(t, len(lines), cssLine)
	for i := 0; i < cssLine; i++ {
		assert.Empty(t, lines[i], "banner line %d must not be mapped", i)
	}

	origin := map[int]int{}
	for _, s := range lines[cssLine] {
		origin[s.GenCol] = s.OrigLine
	}
	if assert.Contains(t, origin, strings.Index(css, "a{")) {
		assert.Equal(t, 0, origin[strings.Index(css, "a{")])
	}
	if assert.Contains(t, origin, strings.Index(css, "b{")) {
		assert.Equal(t, 4, origin[strings.Index(css, "b{")])
	}
}

type closingCompiler struct {
	compiler.Func
	closed bool
}

func (c *closingCompiler) Close() error {
	c.closed = true
	return nil
}

func TestOrchestratorCloseReleasesCompiler(t *testing.T) {
	_, cfg := newProject(t)
	c := &closingCompiler{Func: passthroughCompiler().(compiler.Func)}
	o := NewOrchestrator(cfg, WithCompiler(c))
	require.NoError(t, o.Close())
	assert.True(t, c.closed)

	require.NoError(t, NewOrchestrator(cfg, WithCompiler(passthroughCompiler())).Close())
}

func TestPicoScopeEndToEnd(t *testing.T) {
	root, cfg := newProject(t)
	writeProjectFile(t, root, "vendor/pico/css/pico.conditional.css", ".pico { --pico-x: 1; }")

	streamer := &recordingStreamer{}
	o := NewOrchestrator(cfg, WithCompiler(passthroughCompiler()), WithNotifier(streamer))
	require.NoError(t, NewTaskRunner(o, WithOutput(&bytes.Buffer{})).Run(context.Background(), TaskPicoScope))

	out := filepath.Join(root, "dist", "assets", "pico-wpmoo.css")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), ".wpmoo { --wpmoo-x: 1; }")
	assert.NotContains(t, string(data), "pico")
	assert.Equal(t, []string{out}, streamer.paths)

	original, err := os.ReadFile(filepath.Join(root, "vendor", "pico", "css", "pico.conditional.css"))
	require.NoError(t, err)
	assert.Equal(t, ".pico { --pico-x: 1; }", string(original))
}

func TestMissingSourcesAreNoOps(t *testing.T) {
	root, cfg := newProject(t)
	o := NewOrchestrator(cfg, WithCompiler(passthroughCompiler()))

	require.NoError(t, o.PicoScope(context.Background()))
	require.NoError(t, o.Licenses(context.Background()))
	require.NoError(t, o.Styles(context.Background()))
	require.NoError(t, o.Clean(context.Background()))
	require.NoError(t, o.Clean(context.Background()))

	_, err := os.Stat(filepath.Join(root, "dist"))
	assert.True(t, os.IsNotExist(err))
}

func TestCompileErrorPropagates(t *testing.T) {
	root, cfg := newProject(t)
	writeProjectFile(t, root, "scss/wpmoo.scss", "body {")
	c := compiler.Func(func(context.Context, string, compiler.Options) (compiler.Result, error) {
		return compiler.Result{}, &compiler.Error{Message: "expected \"}\""}
	})
	o := NewOrchestrator(cfg, WithCompiler(c))
	err := NewTaskRunner(o, WithOutput(&bytes.Buffer{})).Run(context.Background(), TaskBuild)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected "}"`)
	assert.NoFileExists(t, filepath.Join(root, "css", "wpmoo.css"))
	assert.NoFileExists(t, filepath.Join(root, "dist", "LICENSE-PICO.md"))
}
