// Package domainerrors provides code-tagged domain errors shared across
// services, stores, and the HTTP layer. Services construct these at the
// boundary where an infrastructure failure becomes a business outcome;
// transport maps codes to HTTP statuses without inspecting messages.
//
// Import with the dErrors alias by convention:
//
//	dErrors "vouch/pkg/domain-errors"
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. The set mirrors the issuance/verification
// error taxonomy: which failures abort, which degrade, and how each surfaces
// to callers.
type Code string

const (
	// CodeConflict signals a duplicate credential id or an invalid state
	// transition (e.g. revoking an already revoked credential).
	CodeConflict Code = "conflict"

	// CodeNotFound covers unknown credential, template, or issuer references.
	CodeNotFound Code = "not_found"

	// CodeBadRequest covers malformed or incomplete caller input.
	CodeBadRequest Code = "bad_request"

	// CodeUnauthorized covers missing or invalid issuer authentication.
	CodeUnauthorized Code = "unauthorized"

	// CodeLedgerUnavailable signals that the ledger anchor could not be
	// confirmed within its budget. Fatal during issuance, soft during
	// verification.
	CodeLedgerUnavailable Code = "ledger_unavailable"

	// CodeRenderFailed signals an unrecoverable markup/style error or an
	// unavailable render engine.
	CodeRenderFailed Code = "render_failed"

	// CodeStorageUnavailable signals a content-store failure. Never fatal to
	// issuance; surfaces as a warning.
	CodeStorageUnavailable Code = "storage_unavailable"

	// CodeInvariantViolation marks a broken aggregate invariant. These are
	// programming or data errors, not caller mistakes.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal_error"
)

// Error is a domain error with a machine-readable code, a human-readable
// message, and an optional wrapped cause.
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

func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf extracts the outermost domain code, defaulting to CodeInternal for
// untyped errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the outermost domain message. Untyped errors yield a
// generic message so internal detail never leaks to callers.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a domain code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeLedgerUnavailable, CodeStorageUnavailable:
		return http.StatusBadGateway
	case CodeRenderFailed:
		return http.StatusServiceUnavailable
	case CodeInvariantViolation, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
