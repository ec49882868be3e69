package models

import "errors"

// Ledger errors, grouped by how callers should treat them. Only
// ErrTransferFailed is retryable without a state change; everything else is
// deterministic for the same input.
var (
	// Validation: bad input shape or value.
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrNoParticipants       = errors.New("bill needs at least one participant")
	ErrShareMismatch        = errors.New("shares do not sum to bill total")
	ErrDuplicateParticipant = errors.New("duplicate participant")

	// Not found.
	ErrBillNotFound        = errors.New("bill not found")
	ErrParticipantNotFound = errors.New("participant not found")

	// Authorization.
	ErrNotOrganizer = errors.New("only the organizer may withdraw")

	// State conflict.
	ErrBillWithdrawn    = errors.New("bill is withdrawn")
	ErrBillNotComplete  = errors.New("bill is not fully collected")
	ErrAlreadyWithdrawn = errors.New("bill already withdrawn")

	// Execution: the external transfer did not go through. No ledger state
	// was committed; the caller may retry the same command.
	ErrTransferFailed = errors.New("transfer failed")
)

// IsValidation reports whether err is a bad-input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrNoParticipants) ||
		errors.Is(err, ErrShareMismatch) ||
		errors.Is(err, ErrDuplicateParticipant)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBillNotFound) || errors.Is(err, ErrParticipantNotFound)
}

// IsConflict reports whether err is a state-conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrBillWithdrawn) ||
		errors.Is(err, ErrBillNotComplete) ||
		errors.Is(err, ErrAlreadyWithdrawn)
}
