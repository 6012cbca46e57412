// Package errors provides the classified error type used across uibuild.
//
// Every failure that leaves a pipeline stage carries a category (compile,
// stream, filesystem, config, ...) and a severity, plus optional structured
// context such as the offending path. The CLI adapter turns these into a
// short message on stderr and a non-zero exit status.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryCompile, "stylesheet compilation failed").
//		WithContext("path", file.Path).
//		WithCause(sassErr).
//		Build()
package errors
