// Package errors provides structured error types for cheertower.
//
// Error codes let the CLI and the HTTP server classify failures the same
// way: a validation failure is reported to the user as-is, a missing saved
// routine becomes a 404, and anything unexpected becomes a 500.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - UNAVAILABLE: A backing service (cache, store) could not be reached
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidTeamSize, "team size must be at least 1, got %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidTeamSize) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeUnavailable, origErr, "connect to redis at %s", addr)
//
// The layout engine and time formatter never return errors; only the
// routine composer and the layers around it do.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidLevel    Code = "INVALID_LEVEL"
	ErrCodeInvalidTeamSize Code = "INVALID_TEAM_SIZE"
	ErrCodeInvalidLength   Code = "INVALID_LENGTH"
	ErrCodeInvalidFocus    Code = "INVALID_FOCUS"
	ErrCodeInvalidSection  Code = "INVALID_SECTION"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidID       Code = "INVALID_ID"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Backing service errors
	ErrCodeUnavailable Code = "UNAVAILABLE"
	ErrCodeTimeout     Code = "TIMEOUT"

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

// IsValidation reports whether err carries an INVALID_* code.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidLevel, ErrCodeInvalidTeamSize,
		ErrCodeInvalidLength, ErrCodeInvalidFocus, ErrCodeInvalidSection,
		ErrCodeInvalidFormat, ErrCodeInvalidID:
		return true
	}
	return false
}

// HTTPStatus maps an error to the status code the server responds with.
// Errors without a code map to 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if IsValidation(err) {
		return http.StatusBadRequest
	}
	switch GetCode(err) {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
