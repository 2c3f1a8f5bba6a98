package resiligo

import (
	"log/slog"
	"time"
)

type settings struct {
	cfg     Config
	logger  *slog.Logger
	sleeper Sleeper
	hooks   Hooks
}

// Option configures an Invoker.
type Option func(*settings)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithSleeper sets a custom sleeper for retry timing (useful for testing).
func WithSleeper(sleeper Sleeper) Option {
	return func(s *settings) {
		s.sleeper = sleeper
	}
}

// WithHooks sets the observability callbacks.
func WithHooks(hooks Hooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}

// WithName sets the endpoint name used in logs and hooks.
func WithName(name string) Option {
	return func(s *settings) {
		s.cfg.Name = name
	}
}

// WithRateLimit sets the initial refill rate and the bucket capacity.
func WithRateLimit(rps float64, capacity int) Option {
	return func(s *settings) {
		s.cfg.InitialRPS = rps
		s.cfg.Capacity = capacity
	}
}

// WithRetries sets the maximum number of attempts per call.
func WithRetries(maxAttempts int) Option {
	return func(s *settings) {
		s.cfg.MaxAttempts = maxAttempts
	}
}

// WithBackoff sets the backoff base wait, cap and multiplier.
func WithBackoff(base, max time.Duration, factor float64) Option {
	return func(s *settings) {
		s.cfg.RetryBaseWait = base
		s.cfg.RetryMaxWait = max
		s.cfg.RetryFactor = factor
	}
}

// WithJitter sets the backoff jitter factor. Zero disables jitter, making
// retry delays deterministic.
func WithJitter(jitter float64) Option {
	return func(s *settings) {
		s.cfg.RetryJitter = jitter
	}
}

// WithBreaker sets the circuit breaker's consecutive-failure threshold and
// recovery timeout.
func WithBreaker(failureThreshold uint32, recoveryTimeout time.Duration) Option {
	return func(s *settings) {
		s.cfg.FailureThreshold = failureThreshold
		s.cfg.RecoveryTimeout = recoveryTimeout
	}
}

// WithDeadLetterCapacity sets the dead-letter retention limit.
// Zero means unbounded.
func WithDeadLetterCapacity(capacity int) Option {
	return func(s *settings) {
		s.cfg.DeadLetterCapacity = capacity
	}
}
