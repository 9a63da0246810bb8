// Package common defines shared constants and sentinel errors used across
// client and server layers of Protokol. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors raised before any remote call is attempted.
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Finalization preconditions. Each one names the condition the operator
	// has to fix, so the client can surface an actionable message.
	ErrMissingStaffSignature = errors.New("missing staff signature")
	ErrQueueMismatch         = errors.New("entry not pending in the chosen queue")
	ErrMixedQueueTypes       = errors.New("selected entries have mixed queue types")
	ErrAlreadyFinalized      = errors.New("entry already finalized")
)
