package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
	"github.com/wpmoo-org/uibuild/internal/logfields"
)

// Dest writes each file to dir, keeping its path relative to its base. When
// writeMaps is set and the file carries a source map, the map is written next
// to it as <name>.map and referenced from a trailing comment. The returned file
// points at the written location.
func Dest(dir string, writeMaps bool) Stage {
	return NewStage("dest", func(_ context.Context, f *asset.File) (*asset.File, error) {
		if f.IsNull() {
			return f, nil
		}
		if f.IsStream() {
			return nil, errors.StreamUnsupported("dest", f.Path)
		}

		target := filepath.Join(dir, filepath.FromSlash(f.Relative()))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, errors.FileSystemFailed("mkdir", filepath.Dir(target), err)
		}

		if writeMaps && f.SourceMap != nil {
			if err := writeSourceMap(f, target); err != nil {
				return nil, err
			}
		}

		if err := os.WriteFile(target, f.Contents, 0o644); err != nil {
			return nil, errors.FileSystemFailed("write", target, err)
		}
		slog.Debug("wrote file", logfields.Path(target), logfields.Size(humanize.Bytes(uint64(len(f.Contents)))))

		f.Path = target
		f.Base = dir
		return f, nil
	})
}

func writeSourceMap(f *asset.File, target string) error {
	sm := f.SourceMap.Clone()
	if root, err := filepath.Rel(filepath.Dir(target), f.Base); err == nil {
		sm.SourceRoot = filepath.ToSlash(root)
	}
	data, err := sm.Marshal()
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "encode source map").
			WithContext("path", target).
			Build()
	}
	mapPath := target + ".map"
	if err := os.WriteFile(mapPath, data, 0o644); err != nil {
		return errors.FileSystemFailed("write", mapPath, err)
	}
	f.Contents = append(f.Contents, fmt.Sprintf("\n/*# sourceMappingURL=%s */", filepath.Base(mapPath))...)
	return nil
}
