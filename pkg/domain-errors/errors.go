// Package domainerrors defines the coded error type surfaced across service
// boundaries. Services translate store sentinels and ledger failures into
// these codes; the HTTP layer maps codes to status lines without inspecting
// error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	// CodeInvalidInput covers missing or malformed request fields.
	CodeInvalidInput Code = "invalid_input"
	// CodeWrongRole is returned when an organization's role does not permit
	// the requested operation (e.g. an offer from a non-supply org).
	CodeWrongRole Code = "wrong_role"
	// CodeNotFound means a referenced local index entity is absent.
	CodeNotFound Code = "not_found"
	// CodeConflict covers uniqueness violations and busy per-order locks.
	CodeConflict Code = "conflict"
	// CodeLedgerUnavailable means the ledger transport failed or timed out.
	CodeLedgerUnavailable Code = "ledger_unavailable"
	// CodeLedgerMalformed means the ledger answered with a body that could
	// not be parsed as structured data.
	CodeLedgerMalformed Code = "ledger_malformed"
	// CodeLedgerFailed means a ledger transaction was classified as failed.
	CodeLedgerFailed Code = "ledger_transaction_failed"
	// CodeIncompleteChain reports a multi-step orchestration halted after a
	// partial commit. The wrapped error carries which steps committed.
	CodeIncompleteChain Code = "incomplete_chain"
	// CodeUnauthorized is returned by the auth middleware.
	CodeUnauthorized Code = "unauthorized"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. Construct via New or Wrap.
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

// New creates a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. The cause stays
// reachable through errors.Is/errors.As.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer writes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeWrongRole:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeLedgerUnavailable:
		return http.StatusBadGateway
	case CodeLedgerMalformed, CodeLedgerFailed, CodeIncompleteChain:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
