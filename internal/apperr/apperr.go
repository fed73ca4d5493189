// Package apperr provides structured domain errors with machine-readable codes.
package apperr

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeNotAuthenticated means no verified identity was supplied.
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"

	// CodeNotFound means a referenced user, item, bid or event does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeForbidden means the caller is authenticated but lacks the required role.
	CodeForbidden Code = "FORBIDDEN"

	// CodeSelfDemotion means an admin tried to demote their own account.
	CodeSelfDemotion Code = "SELF_DEMOTION"

	// CodeInsufficientFunds means the balance cannot cover a requested debit.
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"

	// CodeBidTooLow means the bid amount is below the minimum stake.
	CodeBidTooLow Code = "BID_TOO_LOW"

	// CodeInvalidTransition means the requested state change is not permitted.
	CodeInvalidTransition Code = "INVALID_TRANSITION"

	// CodeAlreadyTerminal means the item is already completed or cancelled.
	CodeAlreadyTerminal Code = "ALREADY_TERMINAL"

	// CodeDuplicateSlug means a changelog slug is already in use.
	CodeDuplicateSlug Code = "DUPLICATE_SLUG"
)

// Error is the domain error type carrying a code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeForbidden, CodeSelfDemotion:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateSlug, CodeAlreadyTerminal, CodeInvalidTransition:
		return http.StatusConflict
	case CodeInsufficientFunds:
		return http.StatusPaymentRequired
	case CodeBidTooLow:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the domain code from an error chain, or CodeUnknown.
func CodeOf(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return CodeUnknown
}
