// Package compiler defines the contract of the external stylesheet compiler.
// Embedded talks to a long-lived Dart Sass process over the embedded protocol;
// Sass runs the command line once per file.
package compiler

import (
	"context"
	"fmt"
)

// Style is the output formatting mode of the compiler.
type Style string

const (
	StyleExpanded   Style = "expanded"
	StyleCompressed Style = "compressed"
)

// Driver selects how Dart Sass is reached.
type Driver string

const (
	DriverEmbedded Driver = "embedded"
	DriverCLI      Driver = "cli"
)

// New returns the compiler for driver. Unknown drivers fall back to Embedded.
func New(driver Driver, binary string) Compiler {
	if driver == DriverCLI {
		return NewSass(binary)
	}
	return NewEmbedded(binary)
}

// Options configures one compilation. Values are not modified by the compiler.
type Options struct {
	Style                   Style
	SourceMap               bool
	SourceMapIncludeSources bool
	// LoadPaths are searched when resolving imports that are not relative.
	LoadPaths []string
	// QuietDeps silences warnings originating in files reached through LoadPaths.
	QuietDeps bool
}

// Result is the output of a successful compilation. SourceMap is the raw JSON
// map and is nil unless Options.SourceMap was set.
type Result struct {
	CSS       string
	SourceMap []byte
}

// Compiler turns a stylesheet source file into CSS.
type Compiler interface {
	Compile(ctx context.Context, path string, opts Options) (Result, error)
}

// Func adapts a plain function to the Compiler interface.
type Func func(ctx context.Context, path string, opts Options) (Result, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, path string, opts Options) (Result, error) {
	return f(ctx, path, opts)
}

// Error carries the compiler's own diagnostic for a failed compilation.
type Error struct {
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("compile %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
