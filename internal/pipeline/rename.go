package pipeline

import (
	"context"

	"github.com/wpmoo-org/uibuild/internal/asset"
)

// Rename replaces the base name of the file path, keeping its directory.
func Rename(base string) Stage {
	return NewStage("rename", func(_ context.Context, f *asset.File) (*asset.File, error) {
		f.Path = asset.ReplaceBase(f.Path, base)
		if f.SourceMap != nil {
			f.SourceMap.File = f.Relative()
		}
		return f, nil
	})
}
