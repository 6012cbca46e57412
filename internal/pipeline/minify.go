package pipeline

import (
	"context"
	"log/slog"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
	"github.com/wpmoo-org/uibuild/internal/logfields"
	"github.com/wpmoo-org/uibuild/internal/minify"
)

// Minify compacts CSS contents. A tracked source map is chained through the
// minifier's own map so it keeps describing the output. A minifier that cannot
// produce a map drops the file's map instead of leaving a stale one.
func Minify(m minify.Minifier) Stage {
	return NewStage("minify", func(_ context.Context, f *asset.File) (*asset.File, error) {
		if f.IsNull() {
			return f, nil
		}
		if f.IsStream() {
			return nil, errors.StreamUnsupported("minify", f.Path)
		}
		mm, mapped := m.(minify.MapMinifier)
		if f.SourceMap == nil || !mapped {
			if f.SourceMap != nil {
				slog.Debug("minifier produces no source map; dropping it", logfields.Path(f.Path))
				f.SourceMap = nil
			}
			out, err := m.Minify(f.Contents)
			if err != nil {
				return nil, minifyFailed(f, err)
			}
			f.Contents = out
			return f, nil
		}

		out, raw, err := mm.MinifyWithMap(f.Contents)
		if err != nil {
			return nil, minifyFailed(f, err)
		}
		outer, err := asset.ParseSourceMap(raw)
		if err != nil {
			return nil, minifyFailed(f, err)
		}
		composed, err := asset.ComposeSourceMaps(outer, f.SourceMap)
		if err != nil {
			return nil, minifyFailed(f, err)
		}
		f.Contents = out
		f.SourceMap = composed
		return f, nil
	})
}

func minifyFailed(f *asset.File, err error) error {
	return errors.WrapError(err, errors.CategoryBuild, "minify failed").
		WithContext("path", f.Path).
		Build()
}
