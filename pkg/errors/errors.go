// Package errors provides structured error types for Planboard.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so the CLI, the HTTP API and the interactive view can react to it
// without string matching:
//   - INVALID_GRANULARITY / INVALID_CURSOR: bad navigation state. These are
//     the only failures of the layout engine itself; see [IsConfiguration].
//   - INVALID_*: other input validation failures
//   - NOT_FOUND_*: missing resources
//   - SOURCE_UNAVAILABLE / NETWORK_ERROR: collaborators that could not be
//     reached
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGranularity, "unknown granularity %q", s)
//	if errors.IsConfiguration(err) {
//	    // reject the navigation request
//	}
//
//	err := errors.Wrap(errors.ErrCodeSourceUnavailable, origErr, "load items from %s", uri)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Navigation state errors (configuration errors)
	ErrCodeInvalidGranularity Code = "INVALID_GRANULARITY"
	ErrCodeInvalidCursor      Code = "INVALID_CURSOR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidItem   Code = "INVALID_ITEM"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidTheme  Code = "INVALID_THEME"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Collaborator errors
	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"

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

// IsConfiguration reports whether err was caused by invalid navigation
// state: an unknown granularity or an unusable cursor date. Callers must
// supply valid navigation state, so these fail fast instead of degrading.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidGranularity, ErrCodeInvalidCursor:
		return true
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
