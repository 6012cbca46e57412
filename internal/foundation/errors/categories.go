package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// CategoryCompile represents stylesheet compiler failures (syntax, unresolved imports).
	CategoryCompile ErrorCategory = "compile"
	// CategoryStream is raised when a stage receives a payload kind it cannot process.
	CategoryStream     ErrorCategory = "stream"
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	// CategoryRuntime represents runtime and infrastructure errors.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current run
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ErrorContext holds the details attached to a classified error, such as the
// path or stage that failed. Reads on a nil context are safe.
type ErrorContext map[string]any

// With returns a copy of c with key set to value.
func (c ErrorContext) With(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	maps.Copy(out, c)
	out[key] = value
	return out
}

// Text returns the value under key when it is a string.
func (c ErrorContext) Text(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}
