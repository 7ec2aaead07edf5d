// Package dErrors defines the stable error taxonomy shared by all domains.
//
// Every error that crosses a service boundary carries a Code so transport
// layers can map it to an HTTP status without inspecting message text, and
// so callers can branch on kind rather than on fragile string matching.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies a stable error kind.
type Code string

const (
	// CodeInvalidProfile marks profile data too malformed to score
	// (missing blood type or role). Optional fields never produce this;
	// they degrade to documented defaults instead.
	CodeInvalidProfile Code = "invalid_profile"

	// CodeNotFound marks an unknown recipient, donor, or request id.
	CodeNotFound Code = "not_found"

	// CodePrivacyConfig marks an unusable noise configuration
	// (epsilon <= 0, non-positive sensitivity). Requests carrying this
	// code fail closed: no score may be released unnoised.
	CodePrivacyConfig Code = "privacy_config"

	// CodeBudgetExhausted marks a recipient whose privacy budget for the
	// current window is spent.
	CodeBudgetExhausted Code = "budget_exhausted"

	// CodeInvalidArgument marks bad caller input such as topN <= 0.
	CodeInvalidArgument Code = "invalid_argument"

	// CodeBadRequest marks an unparseable request body or query.
	CodeBadRequest Code = "bad_request"

	// CodeUnauthorized marks a missing or invalid caller identity.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden marks a caller lacking a required capability.
	CodeForbidden Code = "forbidden"

	// CodeConflict marks a state transition that already happened,
	// e.g. accepting a match request twice.
	CodeConflict Code = "conflict"

	// CodeTimeout marks a deadline expiry before any result was produced.
	CodeTimeout Code = "timeout"

	// CodeInternal marks everything else. Details are logged, never
	// returned to the caller.
	CodeInternal Code = "internal_error"
)

// Error is the concrete domain error. Use New or Wrap to construct it.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with a code and human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		if err == nil {
			return false
		}
	}
	return false
}

// CodeOf extracts the outermost code from err, defaulting to CodeInternal
// for errors that never passed through this package.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
