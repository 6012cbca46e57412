package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeExtension(t *testing.T) {
	tests := []struct {
		name string
		path string
		ext  string
		want string
	}{
		{"scss to css", "/src/scss/wpmoo.scss", ".css", "/src/scss/wpmoo.css"},
		{"relative path", "wpmoo.scss", ".css", "wpmoo.css"},
		{"nested relative", "scss/components/button.sass", ".css", "scss/components/button.css"},
		{"multiple dots keeps inner", "/a/theme.min.scss", ".css", "/a/theme.min.css"},
		{"no extension", "/a/Makefile", ".css", "/a/Makefile.css"},
		{"dotfile has no extension", "/a/.env", ".css", "/a/.env.css"},
		{"same extension", "/a/b.css", ".css", "/a/b.css"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChangeExtension(tt.path, tt.ext))
		})
	}
}

func TestChangeExtension_Idempotent(t *testing.T) {
	paths := []string{
		"/src/scss/wpmoo.scss",
		"scss/_partial.scss",
		"/x/y/z.sass",
		"/x/y/z.theme.scss",
	}
	for _, p := range paths {
		once := ChangeExtension(p, ".css")
		assert.Equal(t, once, ChangeExtension(once, ".css"), p)
	}
}

func TestReplaceBase(t *testing.T) {
	assert.Equal(t, "/dist/assets/pico-wpmoo.css", ReplaceBase("/dist/assets/pico.conditional.css", "pico-wpmoo.css"))
	assert.Equal(t, "LICENSE-PICO.md", ReplaceBase("LICENSE.md", "LICENSE-PICO.md"))
}

func TestIsPartial(t *testing.T) {
	assert.True(t, IsPartial("/scss/_variables.scss"))
	assert.True(t, IsPartial("_mixins.scss"))
	assert.False(t, IsPartial("/scss/wpmoo.scss"))
	assert.False(t, IsPartial("/_dir/wpmoo.scss"))
}
