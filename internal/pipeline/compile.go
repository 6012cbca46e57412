package pipeline

import (
	"context"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/compiler"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

// Compile runs the stylesheet compiler on every buffered file that is not a
// partial. Partials and null files are dropped. Source maps are requested only
// for files that track one.
func Compile(c compiler.Compiler, base compiler.Options) Stage {
	return NewStage("compile", func(ctx context.Context, f *asset.File) (*asset.File, error) {
		if f.IsNull() || asset.IsPartial(f.Path) {
			return nil, nil
		}
		if f.IsStream() {
			return nil, errors.StreamUnsupported("compile", f.Path)
		}

		opts := base
		if opts.Style == "" {
			opts.Style = compiler.StyleExpanded
		}
		opts.SourceMap = f.SourceMap != nil
		opts.SourceMapIncludeSources = f.SourceMap != nil

		res, err := c.Compile(ctx, f.Path, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, errors.CompileFailed(f.Path, err)
		}

		f.SetText(res.CSS)
		f.Path = asset.ChangeExtension(f.Path, ".css")

		if f.SourceMap == nil {
			return f, nil
		}
		// The identity map no longer describes compiled output.
		if len(res.SourceMap) == 0 {
			f.SourceMap = nil
			return f, nil
		}
		sm, err := asset.ParseSourceMap(res.SourceMap)
		if err != nil {
			return nil, errors.CompileFailed(f.Path, err)
		}
		sm.File = asset.ChangeExtension(f.Relative(), ".css")
		sm.RebaseSources(f.Base)
		f.SourceMap = sm
		return f, nil
	})
}
