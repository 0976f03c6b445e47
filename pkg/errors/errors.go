// Package errors provides structured error types shared by the CLI and the
// HTTP API.
//
// Error codes are machine-readable and hierarchical:
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: missing resources
//   - STORAGE/CACHE/INTERNAL: backend failures
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidManifest, "package %q declared twice", name)
//	if errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    // handle validation error
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidGraph    Code = "INVALID_GRAPH"
	ErrCodeInvalidRelax    Code = "INVALID_RELAX"
	ErrCodeInvalidNode     Code = "INVALID_NODE"

	// Resource not found errors
	ErrCodeGraphNotFound Code = "GRAPH_NOT_FOUND"
	ErrCodeNodeNotFound  Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound  Code = "EDGE_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Backend errors
	ErrCodeStorage  Code = "STORAGE_ERROR"
	ErrCodeCache    Code = "CACHE_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

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

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given error code anywhere in its chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from err, or "" for plain errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error, or the
// error string as-is otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
