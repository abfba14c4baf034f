package domain

import "errors"

// Sentinel errors for the contract surface. Callers match with errors.Is;
// every failure site wraps the sentinel with the offending id and the
// expected-vs-actual state so the message can be surfaced verbatim.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidMilestone  = errors.New("invalid milestone")
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrDeadlineExceeded  = errors.New("deadline exceeded")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAlreadyVerified   = errors.New("already verified")
	ErrNotVerified       = errors.New("not verified")
	ErrAlreadyReleased   = errors.New("already released")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidStatus     = errors.New("invalid status")

	// ErrMalformedRecord means stored bytes did not decode into the expected
	// shape. Internally written data never triggers it; seeing it indicates
	// store corruption, not caller error.
	ErrMalformedRecord = errors.New("malformed record")
)
