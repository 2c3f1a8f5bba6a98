package resiligo

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors - use with errors.Is()
var (
	// ErrInvalidConfig indicates a construction-time configuration error.
	// It is never retried.
	ErrInvalidConfig = errors.New("resiligo: invalid configuration")

	// ErrCircuitOpen indicates the call was rejected without invoking the
	// upstream, either because the breaker is open or because the single
	// half-open probe slot is already taken.
	ErrCircuitOpen = errors.New("resiligo: circuit breaker open")

	// ErrCancelled indicates the caller cancelled the invocation. It is not
	// counted against the circuit breaker and produces no dead-letter entry.
	ErrCancelled = errors.New("resiligo: invocation cancelled")

	// ErrRetriesExhausted indicates all attempts failed. The failed call has
	// been recorded in the dead-letter queue.
	ErrRetriesExhausted = errors.New("resiligo: retries exhausted")
)

// FailureKind classifies an upstream failure.
type FailureKind int

const (
	// KindTransient failures are retried with backoff.
	KindTransient FailureKind = iota

	// KindPermanent failures terminate the retry loop immediately.
	KindPermanent
)

// String returns the kind's wire-friendly name.
func (k FailureKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// UpstreamError is the structured failure envelope returned by a wrapped
// operation. Use errors.As() to extract details.
//
// NewRatePerSecond carries an out-of-band rate-limit signal: when positive,
// the invoker updates its rate limiter before the next attempt. RetryAfter,
// when positive, overrides the computed backoff for the next attempt.
type UpstreamError struct {
	Kind             FailureKind
	Message          string
	NewRatePerSecond float64
	RetryAfter       time.Duration
}

func (e *UpstreamError) Error() string {
	if e.NewRatePerSecond > 0 {
		return fmt.Sprintf("resiligo: upstream %s failure: %s (new_rate=%g)", e.Kind, e.Message, e.NewRatePerSecond)
	}
	return fmt.Sprintf("resiligo: upstream %s failure: %s", e.Kind, e.Message)
}

// IsRetryable returns true if the failure may succeed on retry.
func (e *UpstreamError) IsRetryable() bool {
	return e.Kind == KindTransient
}

// NewTransientError creates a retryable upstream failure.
func NewTransientError(message string) *UpstreamError {
	return &UpstreamError{Kind: KindTransient, Message: message}
}

// NewPermanentError creates a non-retryable upstream failure.
func NewPermanentError(message string) *UpstreamError {
	return &UpstreamError{Kind: KindPermanent, Message: message}
}

// NewRateLimitSignal creates a transient failure carrying an
// upstream-advertised rate limit in requests per second.
func NewRateLimitSignal(message string, newRatePerSecond float64) *UpstreamError {
	return &UpstreamError{
		Kind:             KindTransient,
		Message:          message,
		NewRatePerSecond: newRatePerSecond,
	}
}

// ExhaustedError aggregates the final failure of an invocation whose
// attempts ran out. It matches ErrRetriesExhausted with errors.Is(), and the
// last attempt's error remains reachable through errors.Is()/errors.As().
type ExhaustedError struct {
	// Attempts is the number of attempts made, including the final one.
	Attempts int

	// Err is the last attempt's failure.
	Err error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("resiligo: retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap exposes both the sentinel and the underlying failure.
func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrRetriesExhausted, e.Err}
}

// ConfigError represents a configuration error for a single field. It
// matches ErrInvalidConfig with errors.Is().
type ConfigError struct {
	Key     string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("resiligo: config: %s - %s", e.Key, e.Message)
}

// Unwrap returns the ErrInvalidConfig sentinel.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// NewConfigError creates a new ConfigError.
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}
