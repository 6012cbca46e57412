package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(p, []byte("a{}"), 0o644))

	require.NoError(t, RemoveIfExists(p))
	assert.NoFileExists(t, p)
	require.NoError(t, RemoveIfExists(p), "second removal of a missing file succeeds")
}

func TestRemoveIfExistsReportsOtherErrors(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "full")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "child"), 0o755))
	assert.Error(t, RemoveIfExists(sub), "non-empty directory cannot be removed")
}

func TestCleanOutputTwice(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "wpmoo.css")
	require.NoError(t, os.WriteFile(out, []byte("a{}"), 0o644))
	require.NoError(t, os.WriteFile(out+".map", []byte("{}"), 0o644))

	CleanOutput(out)
	assert.NoFileExists(t, out)
	assert.NoFileExists(t, out+".map")

	assert.NotPanics(t, func() { CleanOutput(out) })
}
