package asset

import (
	"path/filepath"
	"strings"
)

// ChangeExtension returns path with its extension replaced by ext (which should
// include the leading dot). Directory and base name are preserved. A base name
// that is only a dot-prefixed word, like ".env", has no extension.
func ChangeExtension(path, ext string) string {
	base := filepath.Base(path)
	old := filepath.Ext(base)
	if old == base {
		old = ""
	}
	return strings.TrimSuffix(path, old) + ext
}

// ReplaceBase returns path with its final element replaced by base.
func ReplaceBase(path, base string) string {
	return filepath.Join(filepath.Dir(path), base)
}

// IsPartial reports whether path names a partial stylesheet (leading underscore),
// which is only ever pulled in through imports.
func IsPartial(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "_")
}
