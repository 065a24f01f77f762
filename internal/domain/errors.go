package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Character errors
	ErrMsgCharacterNotFound = "character not found"
	ErrMsgCharacterExists   = "character already exists"

	// Session errors
	ErrMsgSessionExists = "session already exists"

	// Production errors
	ErrMsgSlotNotFound = "production slot not found"

	// Inventory errors
	ErrMsgInsufficientQuantity = "insufficient quantity"
	ErrMsgInsufficientFunds    = "insufficient funds"

	// Validation errors
	ErrMsgInvalidInput = "invalid input"
	ErrMsgInvalidFocus = "invalid cultivation focus"
	ErrMsgInvalidKind  = "invalid production kind"

	// Contract violations
	ErrMsgInvariantViolation = "invariant violation"

	// Database/System errors
	ErrMsgInfrastructure = "infrastructure failure"
	ErrMsgTxClosed       = "tx is closed"
	ErrMsgConfigInvalid  = "invalid configuration"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrCharacterNotFound = errors.New(ErrMsgCharacterNotFound)
	ErrCharacterExists   = errors.New(ErrMsgCharacterExists)

	ErrSessionExists = errors.New(ErrMsgSessionExists)

	ErrSlotNotFound = errors.New(ErrMsgSlotNotFound)

	ErrInsufficientQuantity = errors.New(ErrMsgInsufficientQuantity)
	ErrInsufficientFunds    = errors.New(ErrMsgInsufficientFunds)

	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
	ErrInvalidFocus = errors.New(ErrMsgInvalidFocus)
	ErrInvalidKind  = errors.New(ErrMsgInvalidKind)

	// ErrInvariantViolation marks a programming-contract failure: negative
	// experience, a tick credited twice, a duplicate session.
	ErrInvariantViolation = errors.New(ErrMsgInvariantViolation)

	// ErrInfrastructure marks collaborator failures (storage, config). Callers retry.
	ErrInfrastructure = errors.New(ErrMsgInfrastructure)

	ErrConfigInvalid = errors.New(ErrMsgConfigInvalid)
	ErrTxClosed      = errors.New(ErrMsgTxClosed)
)

// IsExpected reports whether err is a caller-side condition rather than a fault
func IsExpected(err error) bool {
	return errors.Is(err, ErrCharacterNotFound) ||
		errors.Is(err, ErrCharacterExists) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidFocus) ||
		errors.Is(err, ErrInvalidKind)
}
