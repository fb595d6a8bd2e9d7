// Package errors provides structured error types for nodegraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes name the failure, not the component that raised it. Domain packages
// define their own error structs (for example identity.UnknownIDError) and
// attach a code by implementing Code() [Code]. [GetCode] and [Is] understand
// both *Error values and such domain errors anywhere in the chain.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "unknown projection: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidDocument, origErr, "decode %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Identity resolution errors
	ErrCodeUnknownID     Code = "UNKNOWN_ID"
	ErrCodeDuplicateName Code = "DUPLICATE_NAME"

	// Projection errors
	ErrCodeRootNotFound   Code = "ROOT_NOT_FOUND"
	ErrCodeNoRoot         Code = "NO_ROOT"
	ErrCodeCycleDetected  Code = "CYCLE_DETECTED"
	ErrCodeExpansionLimit Code = "EXPANSION_LIMIT"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Coder is implemented by domain errors that carry an error code.
type Coder interface {
	Code() Code
}

// Error is a structured error with a code and optional cause.
type Error struct {
	ErrCode Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.ErrCode, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.ErrCode, e.Message)
}

// Code returns the error code.
func (e *Error) Code() Code { return e.ErrCode }

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		ErrCode: code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		ErrCode: code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// The outermost coded error in the chain decides.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// It returns the code of the first error in the chain that implements
// [Coder], or the empty string if there is none.
func GetCode(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
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
