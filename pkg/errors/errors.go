// Package errors provides structured error types for artistgraph.
//
// Error codes separate the failure classes the graph engine reacts to
// differently:
//   - NETWORK_ERROR, API_ERROR, VALIDATION_ERROR: a single metadata lookup
//     failed; the affected node or edge is dropped and the build continues
//   - STORE_ERROR: the persistent store failed; a full build is abandoned
//     and re-run without the store
//   - UNAUTHORIZED, INVALID_CONFIG: the metadata source cannot be used at
//     all; the build fails immediately (see [IsFatal])
//   - ARTIST_NOT_FOUND: the seed artist could not be resolved in any mode
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "artist name cannot be empty")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "upsert artist %s", name)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeArtistNotFound Code = "ARTIST_NOT_FOUND"

	// Metadata source errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeAPI         Code = "API_ERROR"
	ErrCodeValidation  Code = "VALIDATION_ERROR"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Authentication errors
	ErrCodeUnauthorized Code = "UNAUTHORIZED"

	// Persistence errors
	ErrCodeStore Code = "STORE_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// It walks the whole error chain, so an outer *Error with a different code
// does not hide an inner match.
func Is(err error, code Code) bool {
	for err != nil {
		if GetCode(err) == code {
			return true
		}
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		err = e.Cause
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
	var api *APIError
	if errors.As(err, &api) {
		return ErrCodeAPI
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return ErrCodeRateLimited
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

// IsFatal reports whether err means the metadata source is unusable, such as
// a rejected API key. Fatal errors abort a graph build instead of dropping
// the affected candidate.
func IsFatal(err error) bool {
	return Is(err, ErrCodeUnauthorized) || Is(err, ErrCodeInvalidConfig)
}

// IsStore reports whether err originates from the persistent store.
func IsStore(err error) bool {
	return Is(err, ErrCodeStore)
}

// APIError is a non-successful response from a metadata source.
type APIError struct {
	Status  int    // HTTP status code
	Number  int    // Source-specific error number (0 if none)
	Message string // Message reported by the source
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Number != 0 {
		return fmt.Sprintf("api error %d (status %d): %s", e.Number, e.Status, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// Code returns the error code for this error type.
func (e *APIError) Code() Code {
	return ErrCodeAPI
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
