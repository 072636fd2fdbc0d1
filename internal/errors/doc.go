// Package errors defines the typed application errors used across the
// pipeline. Every stage wraps its failures in an AppError so the command can
// log the failing stage and its context before exiting.
//
// Errors compose with the standard library:
//
//	err := errors.NewParsingError("failed to open workbook", cause).
//		WithContext("path", path)
//	if errors.IsType(err, errors.ErrTypeParsing) { ... }
package errors
