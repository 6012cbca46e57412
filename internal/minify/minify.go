// Package minify wraps the CSS minifier used before the banner is added.
package minify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// SourceName is the name the minifier's own source map gives its input.
const SourceName = "input.css"

// Minifier shrinks a stylesheet without changing its meaning.
type Minifier interface {
	Minify(src []byte) ([]byte, error)
}

// MapMinifier is a Minifier that can also describe its output with a source
// map whose single source is the input.
type MapMinifier interface {
	Minifier
	MinifyWithMap(src []byte) (out, sourceMap []byte, err error)
}

// Func adapts a plain function to the Minifier interface.
type Func func(src []byte) ([]byte, error)

// Minify calls f.
func (f Func) Minify(src []byte) ([]byte, error) { return f(src) }

// CSS minifies stylesheets with esbuild. It is safe for concurrent use.
type CSS struct{}

// NewCSS returns a ready CSS minifier.
func NewCSS() *CSS { return &CSS{} }

// Minify returns the minified stylesheet.
func (c *CSS) Minify(src []byte) ([]byte, error) {
	out, _, err := c.transform(src, false)
	return out, err
}

// MinifyWithMap returns the minified stylesheet and a source map from it back
// to src.
func (c *CSS) MinifyWithMap(src []byte) ([]byte, []byte, error) {
	return c.transform(src, true)
}

func (c *CSS) transform(src []byte, withMap bool) ([]byte, []byte, error) {
	opts := api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LegalComments:    api.LegalCommentsInline,
		Sourcefile:       SourceName,
		LogLevel:         api.LogLevelSilent,
	}
	if withMap {
		opts.Sourcemap = api.SourceMapExternal
	}
	res := api.Transform(string(src), opts)
	if len(res.Errors) > 0 {
		return nil, nil, fmt.Errorf("minify css: %s", formatMessages(res.Errors))
	}
	// The trailing newline carries no mappings.
	out := bytes.TrimRight(res.Code, "\n")
	if !withMap {
		return out, nil, nil
	}
	return out, res.Map, nil
}

func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			parts = append(parts, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "; ")
}
