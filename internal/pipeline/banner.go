package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wpmoo-org/uibuild/internal/asset"
	"github.com/wpmoo-org/uibuild/internal/foundation/errors"
)

const (
	// BannerMarker identifies banners written by this tool so a rebuild can strip them.
	BannerMarker = "WPMoo UI bundle"
	BannerTitle  = BannerMarker + " - Scoped Base"
)

// BannerText renders the license banner for year.
func BannerText(year int) string {
	return fmt.Sprintf("/*!\n * %s\n * Copyright %d - Licensed under MIT\n * Contains portions of Pico CSS (MIT). See LICENSE-PICO.md.\n */\n",
		BannerTitle, year)
}

// Banner prepends the license banner, moving a tracked source map down by the
// banner's line count. now supplies the copyright year and
// defaults to time.Now.
func Banner(now func() time.Time) Stage {
	if now == nil {
		now = time.Now
	}
	return NewStage("banner", func(_ context.Context, f *asset.File) (*asset.File, error) {
		if f.IsNull() {
			return f, nil
		}
		if f.IsStream() {
			return nil, errors.StreamUnsupported("banner", f.Path)
		}
		banner := BannerText(now().Year())
		if f.SourceMap != nil {
			f.SourceMap.PrependLines(strings.Count(banner, "\n"))
		}
		out := make([]byte, 0, len(banner)+len(f.Contents))
		out = append(out, banner...)
		out = append(out, f.Contents...)
		f.Contents = out
		return f, nil
	})
}
