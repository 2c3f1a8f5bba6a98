// Package validate provides field-level configuration validation helpers.
package validate

import (
	"fmt"
	"time"
)

// Error represents a validation error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation: %s - %s", e.Field, e.Message)
}

// New creates a new validation error.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Newf creates a new validation error with formatted message.
func Newf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Positive validates that a value is positive.
func Positive(field string, value int) error {
	if value <= 0 {
		return Newf(field, "must be positive, got %d", value)
	}
	return nil
}

// PositiveFloat validates that a value is positive.
func PositiveFloat(field string, value float64) error {
	if value <= 0 {
		return Newf(field, "must be positive, got %g", value)
	}
	return nil
}

// PositiveDuration validates that a duration is positive.
func PositiveDuration(field string, value time.Duration) error {
	if value <= 0 {
		return Newf(field, "must be positive, got %s", value)
	}
	return nil
}

// NonNegative validates that a value is non-negative.
func NonNegative(field string, value int) error {
	if value < 0 {
		return Newf(field, "cannot be negative, got %d", value)
	}
	return nil
}

// NonNegativeFloat validates that a value is non-negative.
func NonNegativeFloat(field string, value float64) error {
	if value < 0 {
		return Newf(field, "cannot be negative, got %g", value)
	}
	return nil
}

// InRangeFloat validates that a value is within [min, max).
func InRangeFloat(field string, value, min, max float64) error {
	if value < min || value >= max {
		return Newf(field, "must be in [%g, %g), got %g", min, max, value)
	}
	return nil
}

// AtLeastFloat validates that a value is at least min.
func AtLeastFloat(field string, value, min float64) error {
	if value < min {
		return Newf(field, "must be at least %g, got %g", min, value)
	}
	return nil
}

// Required validates that a string is not empty.
func Required(field, value string) error {
	if value == "" {
		return Newf(field, "is required")
	}
	return nil
}
