package errors

import stderrors "errors"

// ErrStreamUnsupported is the cause of every CategoryStream error, so callers can
// test for it with errors.Is regardless of which stage raised it.
var ErrStreamUnsupported = stderrors.New("streaming not supported")

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithCause sets the wrapped error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context[key] = value
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// BuildError creates a build orchestration error.
func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

// CompileFailed wraps a compiler error. The compiler's own message is kept as the cause.
func CompileFailed(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryCompile, "stylesheet compilation failed").
		Fatal().
		WithContext("path", path).
		Build()
}

// StreamUnsupported reports a stage that received a streaming payload.
func StreamUnsupported(stage, path string) *ClassifiedError {
	return WrapError(ErrStreamUnsupported, CategoryStream, "stage requires buffered contents").
		Fatal().
		WithContext("stage", stage).
		WithContext("path", path).
		Build()
}

// FileSystemFailed wraps an I/O failure on path.
func FileSystemFailed(op, path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryFileSystem, op+" failed").
		Fatal().
		WithContext("operation", op).
		WithContext("path", path).
		Build()
}
