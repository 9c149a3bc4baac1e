// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Lookup errors.
	ErrAccountNotFound     = errors.New("account not found")
	ErrCardNotFound        = errors.New("card not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Input errors.
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidParcelCount = errors.New("invalid parcel count")
	ErrInvalidCycleConfig = errors.New("invalid billing cycle configuration")

	// Precondition errors.
	ErrPayingAccountRequired = errors.New("paying account required")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
