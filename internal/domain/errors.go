package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDivideByZero is returned when a return is requested for a zero
	// entry price.
	ErrDivideByZero = errors.New("divide by zero: entry price is 0")

	// ErrEmptyInput is returned when a rotation is requested over an empty
	// watchlist.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnavailable marks a quote that could not be fetched.
	ErrUnavailable = errors.New("data unavailable")

	ErrInvalidTrade     = errors.New("invalid trade")
	ErrInvalidDirection = errors.New("direction must be Call or Put")
	ErrNotFound         = errors.New("not found")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
