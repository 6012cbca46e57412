package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultSassBinary is looked up on PATH when no binary is configured.
const DefaultSassBinary = "sass"

var sourceMappingURLComment = regexp.MustCompile(`\n?/\*# sourceMappingURL=[^*]*\*/\s*$`)

// Sass compiles stylesheets by running the Dart Sass executable once per file.
// It is the fallback for sass builds that lack the embedded protocol.
type Sass struct {
	binary string
}

// NewSass returns a compiler using binary, or DefaultSassBinary when empty.
func NewSass(binary string) *Sass {
	if binary == "" {
		binary = DefaultSassBinary
	}
	return &Sass{binary: binary}
}

// Available reports whether the executable can be found.
func (s *Sass) Available() bool { return BinaryAvailable(s.binary) }

// BinaryAvailable reports whether binary resolves on PATH or as a path.
func BinaryAvailable(binary string) bool {
	_, err := exec.LookPath(binary)
	return err == nil
}

// Compile runs sass on path. Output is written to a scratch directory and read
// back so the CSS and the map come from one invocation.
func (s *Sass) Compile(ctx context.Context, path string, opts Options) (Result, error) {
	scratch, err := os.MkdirTemp("", "uibuild-sass-*")
	if err != nil {
		return Result{}, fmt.Errorf("sass scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	out := filepath.Join(scratch, "out.css")
	cmd := exec.CommandContext(ctx, s.binary, sassArgs(path, out, opts)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("Running sass", "binary", s.binary, "path", path, "style", opts.Style)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, &Error{Path: path, Message: strings.TrimSpace(stderr.String()), Err: err}
		}
		return Result{}, &Error{Path: path, Err: err}
	}
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		slog.Warn("sass reported warnings", "path", path, "output", msg)
	}

	css, err := os.ReadFile(out)
	if err != nil {
		return Result{}, fmt.Errorf("read sass output: %w", err)
	}
	res := Result{CSS: sourceMappingURLComment.ReplaceAllString(string(css), "\n")}
	if opts.SourceMap {
		sm, err := os.ReadFile(out + ".map")
		if err != nil {
			return Result{}, fmt.Errorf("read sass source map: %w", err)
		}
		res.SourceMap = sm
	}
	return res, nil
}

func sassArgs(in, out string, opts Options) []string {
	style := opts.Style
	if style == "" {
		style = StyleExpanded
	}
	args := []string{"--style=" + string(style), "--no-error-css"}
	for _, p := range opts.LoadPaths {
		args = append(args, "--load-path="+p)
	}
	if opts.QuietDeps {
		args = append(args, "--quiet-deps")
	}
	if opts.SourceMap {
		args = append(args, "--source-map", "--source-map-urls=absolute")
		if opts.SourceMapIncludeSources {
			args = append(args, "--embed-sources")
		}
	} else {
		args = append(args, "--no-source-map")
	}
	return append(args, in, out)
}
