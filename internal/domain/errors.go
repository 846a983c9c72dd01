package domain

import "errors"

// Sentinel errors for domain-level error handling.
var (
	ErrInvalidOrderParameters = errors.New("invalid_order_parameters")
	ErrUnknownInstrument      = errors.New("unknown_instrument")
	ErrInsufficientBalance    = errors.New("insufficient_balance")
	ErrInvalidFill            = errors.New("invalid_fill")
	ErrUserNotFound           = errors.New("user_not_found")
	ErrUserAlreadyExists      = errors.New("user_already_exists")
	ErrOrderNotFound          = errors.New("order_not_found")
)

// ValidationError represents a rejected set of order or user parameters.
// It matches ErrInvalidOrderParameters under errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidOrderParameters
}
