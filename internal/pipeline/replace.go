package pipeline

import (
	"context"
	"regexp"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

// Patterns shared by the build graphs.
var (
	UpstreamBannerPattern = regexp.MustCompile(`/\*!([\s\S]*?)Pico CSS([\s\S]*?)\*/`)
	OwnBannerPattern      = regexp.MustCompile(`/\*!([\s\S]*?)` + regexp.QuoteMeta(BannerMarker) + `([\s\S]*?)\*/`)
	PicoClassPattern      = regexp.MustCompile(`\.pico`)
	PicoVarPattern        = regexp.MustCompile(`--pico-`)
)

// Replace substitutes every match of re in the file text with repl. repl may
// reference capture groups as $1 or ${name}. A tracked source map is shifted
// to the edited text.
func Replace(name string, re *regexp.Regexp, repl string) Stage {
	return NewStage(name, func(_ context.Context, f *asset.File) (*asset.File, error) {
		if f.IsNull() {
			return f, nil
		}
		if f.IsStream() {
			return nil, errors.StreamUnsupported(name, f.Path)
		}
		text, err := f.Text()
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryBuild, "decode contents").
				WithContext("path", f.Path).
				Build()
		}
		if f.SourceMap == nil {
			f.SetText(re.ReplaceAllString(text, repl))
			return f, nil
		}
		if err := replaceMapped(f, re, text, repl); err != nil {
			return nil, errors.WrapError(err, errors.CategoryBuild, "update source map").
				WithContext("path", f.Path).
				Build()
		}
		return f, nil
	})
}

// replaceMapped performs the substitution edit by edit so the source map can
// follow every moved byte.
func replaceMapped(f *asset.File, re *regexp.Regexp, text, repl string) error {
	src := []byte(text)
	template := []byte(repl)
	var (
		out   []byte
		edits []asset.Edit
		last  int
	)
	for _, m := range re.FindAllSubmatchIndex(src, -1) {
		out = append(out, src[last:m[0]]...)
		start := len(out)
		out = re.Expand(out, template, src, m)
		edits = append(edits, asset.Edit{Start: m[0], End: m[1], Len: len(out) - start})
		last = m[1]
	}
	if len(edits) == 0 {
		f.SetText(text)
		return nil
	}
	out = append(out, src[last:]...)
	if err := f.SourceMap.ShiftMappings(src, out, edits); err != nil {
		return err
	}
	f.Contents = out
	return nil
}
