// Package errors provides classified error primitives used across lotbuilder.
//
// A ClassifiedError carries a category (config, filesystem, inject, ...), a
// severity and free-form context. The CLI adapter turns them into exit codes
// and log lines.
//
// Example usage:
//
//	err := errors.FileSystemError("inventory root not readable").
//		WithContext("path", root).
//		WithCause(originalErr).
//		Build()
package errors
