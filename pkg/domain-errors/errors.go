// Package domainerrors provides coded errors for the domain and service layers.
//
// Services return these so transports can map them onto protocol-specific
// failures (HTTP status codes, problem documents) without string matching.
// Infrastructure layers return pkg/platform/sentinel errors instead; services
// translate sentinels into coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain failure.
type Code string

const (
	// CodeInvalidInput marks input rejected at a trust boundary (bad UUID, bad enum).
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation marks a well-formed request that fails business validation.
	CodeValidation Code = "validation_error"
	// CodeBadRequest marks a structurally broken request (missing body, bad JSON).
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks missing or invalid caller identity.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated caller lacking permission.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a referenced entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a request that conflicts with current state.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks an attempted state transition the aggregate forbids.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInvalidState marks an operation the entity's lifecycle state does not allow.
	CodeInvalidState Code = "invalid_state"
	// CodeInternal marks an unexpected infrastructure failure.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Construct with New or Wrap.
type Error struct {
	code    Code
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the classification of the error.
func (e *Error) Code() Code { return e.code }

// Message returns the human-readable description without the code prefix.
func (e *Error) Message() string { return e.message }

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{code: code, message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message, preserving the cause chain.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors so transports fail closed.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return CodeInternal
}

// MessageOf extracts the message from err, empty for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.message
	}
	return ""
}
