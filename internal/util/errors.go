// internal/util/errors.go
package util

import "errors"

// Common application-specific errors. Every validation failure in the
// ledger core surfaces as one of these, synchronously; nothing is
// logged-and-swallowed and nothing is retried.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input provided")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrInvalidTarget     = errors.New("target amount must be positive")
	ErrInvalidGoal       = errors.New("goal does not belong to account")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrGoalNotFound      = errors.New("saving goal not found")
)

// IsError reports whether err wraps target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
