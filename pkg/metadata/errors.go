package metadata

import "errors"

// StoreError represents a domain error from metadata operations.
//
// These are business logic errors (record not found, duplicate share, etc.)
// as opposed to infrastructure errors (disk failure, network error). The
// HTTP layer translates StoreError codes to status codes.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// ID is the record id related to the error (if applicable)
	ID string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.ID != "" {
		return e.Message + ": " + e.ID
	}
	return e.Message
}

// ErrorCode represents the category of a metadata error.
type ErrorCode int

const (
	// ErrInvalidInput indicates missing or malformed required fields.
	// Always detected before any store mutation.
	ErrInvalidInput ErrorCode = iota

	// ErrNotFoundOrDenied indicates the record is absent or the caller lacks
	// rights over it. The two cases are deliberately conflated so that
	// unauthorized callers cannot probe for record existence.
	ErrNotFoundOrDenied

	// ErrNotFound indicates the record does not exist. Used only where
	// leaking existence is not a concern, such as revoking a share the
	// caller already owns the file of.
	ErrNotFound

	// ErrAlreadyShared indicates an active share for the same file and
	// identity already exists.
	ErrAlreadyShared

	// ErrUpstreamUnavailable indicates the pin gateway failed. Propagated on
	// direct pin/unpin operations, swallowed during cascading deletes.
	ErrUpstreamUnavailable
)

// CodeOf extracts the ErrorCode from err if it is (or wraps) a StoreError.
func CodeOf(err error) (ErrorCode, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}
