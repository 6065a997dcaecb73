package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Not found errors
	ErrEventNotFound      = errors.New("event not found")
	ErrInvestorNotFound   = errors.New("investor not found")
	ErrStartupNotFound    = errors.New("startup not found")
	ErrInvestmentNotFound = errors.New("investment not found")

	// Validation errors
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidInvestorID = errors.New("invalid investor id")
	ErrInvalidStartupID  = errors.New("invalid startup id")
	ErrInvalidAmount     = errors.New("amount must be a finite number >= 0")
	ErrInvalidBudget     = errors.New("budget must be a finite number >= 0")
	ErrMissingName       = errors.New("name is required")
	ErrInvalidDate       = errors.New("date is required")
	ErrEventMismatch     = errors.New("startup and investor must belong to the same event")

	// Budget errors
	ErrInsufficientBudget = errors.New("insufficient budget")

	// Concurrency errors
	ErrVersionConflict = errors.New("investor version conflict")
)

// InsufficientBudgetError carries the headroom still available so callers can
// present it. It matches errors.Is(err, ErrInsufficientBudget).
type InsufficientBudgetError struct {
	Available float64
}

func (e *InsufficientBudgetError) Error() string {
	return fmt.Sprintf("insufficient budget. Available: %g", e.Available)
}

func (e *InsufficientBudgetError) Is(target error) bool {
	return target == ErrInsufficientBudget
}

// NewInsufficientBudgetError returns an InsufficientBudgetError for the given
// remaining headroom.
func NewInsufficientBudgetError(available float64) error {
	return &InsufficientBudgetError{Available: available}
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrInvestorNotFound) ||
		errors.Is(err, ErrStartupNotFound) ||
		errors.Is(err, ErrInvestmentNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidInvestorID) ||
		errors.Is(err, ErrInvalidStartupID) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, ErrMissingName) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEventMismatch)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrInsufficientBudget) ||
		errors.Is(err, ErrVersionConflict)
}
