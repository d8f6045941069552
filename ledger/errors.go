/*
errors.go - Shared sentinel and structured errors for the workflow packages.

Domain packages wrap these with additional context; the API boundary maps
them to HTTP statuses with errors.Is/As.
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a requested debit exceeds the
	// available balance. At submission time this is a hard reject; at
	// approval time the workflow demotes it to a warning.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnknownBalance is returned for a balance kind that is neither
	// "leave" nor "ccl".
	ErrUnknownBalance = errors.New("unknown balance kind")

	// ErrNotFound is returned when an account or request id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a target status is not reachable
	// from the current status for the acting role.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrAlreadyInState is returned when a request is transitioned into the
	// terminal status it already holds. Kept distinct from
	// ErrInvalidTransition so double-approvals surface as conflicts, not as
	// silent successes or double-applied balance effects.
	ErrAlreadyInState = errors.New("request already in that state")

	// ErrConcurrentModification is returned when a conditional status update
	// finds the record no longer in its expected prior status. The losing
	// side of a transition race observes this instead of double-debiting.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// InsufficientBalanceError carries the shortfall details.
type InsufficientBalanceError struct {
	Kind      BalanceKind
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: available %s, requested %s",
		e.Kind, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// Shortfall returns how many days short the balance is.
func (e *InsufficientBalanceError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}
