package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

// Src reads every regular file under root matching one of patterns. Patterns are
// slash separated and relative to root. Each file's Base is the static prefix of
// the pattern that matched it, so "scss/**/*.scss" yields files based at
// root/scss. A pattern that matches nothing is not an error.
//
// With withMaps set, every file starts out with an identity source map.
func Src(root string, patterns []string, withMaps bool) ([]*asset.File, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var files []*asset.File

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.ValidationError("invalid source pattern").
				WithContext("pattern", pattern).
				Build()
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.FileSystemFailed("glob", filepath.Join(root, filepath.FromSlash(pattern)), err)
		}
		sort.Strings(matches)

		base, _ := doublestar.SplitPattern(pattern)
		baseDir := filepath.Join(root, filepath.FromSlash(base))

		for _, m := range matches {
			path := filepath.Join(root, filepath.FromSlash(m))
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}

			data, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.FileSystemFailed("read", path, err)
			}
			f := asset.NewFile(baseDir, path, data)
			if withMaps {
				f.InitSourceMap()
			}
			files = append(files, f)
		}
	}
	return files, nil
}
