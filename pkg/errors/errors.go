// Package errors provides structured error types for chartkit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP host
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The render-pass taxonomy is:
//   - DOMAIN_ERROR: a scale domain cannot be built (e.g. zero in a log domain).
//     The pass is aborted and the previous scene is left untouched.
//   - DUPLICATE_KEY: a layout produced two primitives with the same key.
//     The pass is aborted and logged.
//   - MISSING_FIELD: a data point lacks a required field. Under the default
//     "skip" policy the point is dropped with a warning.
//   - SURFACE_UNAVAILABLE: the drawable surface cannot be used (zero size,
//     released). The chart waits for the next change notification.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDomain, "log domain [%g, %g] includes zero", lo, hi)
//	if errors.Is(err, errors.ErrCodeDomain) {
//	    // keep the previous scene
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidChartKind Code = "INVALID_CHART_KIND"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"

	// Render pass errors
	ErrCodeDomain             Code = "DOMAIN_ERROR"
	ErrCodeDuplicateKey       Code = "DUPLICATE_KEY"
	ErrCodeMissingField       Code = "MISSING_FIELD"
	ErrCodeSurfaceUnavailable Code = "SURFACE_UNAVAILABLE"
	ErrCodeUnmounted          Code = "UNMOUNTED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// FieldError reports a data point that lacks a configured field.
// It carries enough context to build a per-point warning.
type FieldError struct {
	Index int    // Position of the point in the series
	Field string // Name of the missing field
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("point %d: missing field %q", e.Index, e.Field)
}

// Code returns the error code for this error type.
func (e *FieldError) Code() Code {
	return ErrCodeMissingField
}

// MissingField wraps a FieldError in a coded Error.
func MissingField(index int, field string) *Error {
	fe := &FieldError{Index: index, Field: field}
	return Wrap(ErrCodeMissingField, fe, "required field %q not present", field)
}

// IsRecoverable reports whether a pass error leaves the chart able to render
// on the next notification without intervention.
func IsRecoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingField, ErrCodeSurfaceUnavailable:
		return true
	}
	return false
}

// KeyError reports a primitive key that occurs more than once in one pass.
type KeyError struct {
	Key    string
	First  int // Sequence index of the first occurrence
	Second int // Sequence index of the duplicate
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	return fmt.Sprintf("key %q at %d and %d", e.Key, e.First, e.Second)
}

// DuplicateKey wraps a KeyError in a coded Error.
func DuplicateKey(key string, first, second int) *Error {
	ke := &KeyError{Key: key, First: first, Second: second}
	return Wrap(ErrCodeDuplicateKey, ke, "duplicate primitive key %q", key)
}
