package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceMap_RebaseSources(t *testing.T) {
	m := &SourceMap{Sources: []string{
		"file:///project/scss/wpmoo.scss",
		"file:///project/scss/components/_button.scss",
		"file:///project/node_modules/@picocss/pico/scss/_index.scss",
		"data:;charset=utf-8,a%7Bb:c%7D",
		"already/relative.scss",
	}}

	m.RebaseSources("/project/scss")

	assert.Equal(t, []string{
		"wpmoo.scss",
		"components/_button.scss",
		"../node_modules/@picocss/pico/scss/_index.scss",
		"data:;charset=utf-8,a%7Bb:c%7D",
		"already/relative.scss",
	}, m.Sources)
}

func TestSourceMap_RebaseSourcesIsNoopOnRelative(t *testing.T) {
	m := &SourceMap{Sources: []string{"wpmoo.scss", "../vendor/x.scss"}}
	m.RebaseSources("/project/scss")
	once := append([]string(nil), m.Sources...)

	m.RebaseSources("/project/scss")
	assert.Equal(t, once, m.Sources)
	assert.Equal(t, []string{"wpmoo.scss", "../vendor/x.scss"}, m.Sources)
}

func TestSourceMap_RebaseDecodesEscapes(t *testing.T) {
	m := &SourceMap{Sources: []string{"file:///project/my%20styles/app.scss"}}
	m.RebaseSources("/project")
	assert.Equal(t, []string{"my styles/app.scss"}, m.Sources)
}

func TestParseSourceMap(t *testing.T) {
	raw := []byte(`{"version":3,"sourceRoot":"","sources":["file:///p/a.scss"],"names":[],"mappings":"AAAA","file":"a.css"}`)
	m, err := ParseSourceMap(raw)
	require.NoError(t, err)
	assert.Equal(t, "a.css", m.File)
	assert.Equal(t, "AAAA", m.Mappings)

	_, err = ParseSourceMap([]byte("not json"))
	assert.Error(t, err)
}

func TestSourceMap_MarshalFillsEmptyArrays(t *testing.T) {
	m := &SourceMap{Version: 3, File: "a.css"}
	out, err := m.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"sources":[]`)
	assert.Contains(t, string(out), `"names":[]`)
}
