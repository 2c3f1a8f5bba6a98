package resiligo

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"time"
)

// Operation is the wrapped upstream call. It should honor ctx cancellation
// and may return an *UpstreamError envelope to classify its failure; any
// other non-cancellation error is treated as transient.
type Operation[T any] func(ctx context.Context) (T, error)

// Invoker orchestrates a single logical call against an unreliable
// upstream: it consults the circuit breaker, acquires a rate-limit token,
// executes the operation, and retries transient failures with exponential
// backoff. Calls that exhaust all attempts are captured in the dead-letter
// queue and surfaced as an ExhaustedError.
//
// One Invoker guards one protected endpoint. It is safe for use by many
// concurrent callers, which share its limiter, breaker and dead-letter
// queue; independent endpoints use independent Invokers.
type Invoker[T any] struct {
	config  Config
	logger  *slog.Logger
	limiter *RateLimiter
	breaker *CircuitBreaker
	dlq     *DeadLetterQueue
	sleeper Sleeper
	hooks   Hooks
}

// New creates an Invoker from cfg and options. Configuration errors match
// ErrInvalidConfig and are fatal.
func New[T any](cfg Config, opts ...Option) (*Invoker[T], error) {
	s := settings{cfg: cfg}
	for _, opt := range opts {
		opt(&s)
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.sleeper == nil {
		s.sleeper = realSleeper{}
	}

	inv := &Invoker[T]{
		config:  s.cfg,
		logger:  s.logger,
		sleeper: s.sleeper,
		hooks:   s.hooks,
	}

	limiter, err := NewRateLimiter(s.cfg.Capacity, s.cfg.InitialRPS)
	if err != nil {
		return nil, err
	}
	limiter.OnRateUpdate(func(oldRPS, newRPS float64) {
		inv.logger.Info("rate limit updated",
			"name", inv.config.Name,
			"old_rps", oldRPS,
			"new_rps", newRPS,
		)
		if inv.hooks.OnRateUpdate != nil {
			inv.hooks.OnRateUpdate(oldRPS, newRPS)
		}
	})
	inv.limiter = limiter

	breaker, err := NewCircuitBreaker(BreakerConfig{
		Name:             s.cfg.Name,
		FailureThreshold: s.cfg.FailureThreshold,
		RecoveryTimeout:  s.cfg.RecoveryTimeout,
		OnStateChange: func(name, from, to string) {
			inv.logger.Info("circuit breaker state changed",
				"name", name,
				"from", from,
				"to", to,
			)
			if inv.hooks.OnStateChange != nil {
				inv.hooks.OnStateChange(name, from, to)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	inv.breaker = breaker

	inv.dlq = NewDeadLetterQueue(s.cfg.DeadLetterCapacity)

	return inv, nil
}

// Invoke executes op with the full resilience pipeline. payload is an
// opaque descriptor of the call's arguments, recorded verbatim on the
// dead-letter entry if every attempt fails.
//
// The only failures surfaced to the caller are an ErrCancelled-wrapped
// error when ctx is cancelled at any suspension point, and an
// ExhaustedError aggregating the final failure otherwise. Intermediate
// attempt failures stay internal to the retry loop and are reported
// through Hooks.OnRetry.
func (inv *Invoker[T]) Invoke(ctx context.Context, payload string, op Operation[T]) (T, error) {
	var zero T
	var lastErr error

	attempts := 0
	for attempt := 1; attempt <= inv.config.MaxAttempts; attempt++ {
		attempts = attempt

		done, allowErr := inv.breaker.Allow()
		if allowErr != nil {
			// Rejected without touching the limiter or the upstream, and
			// without recording a breaker failure.
			lastErr = allowErr
		} else {
			result, opErr := inv.attempt(ctx, op, done)
			if opErr == nil {
				return result, nil
			}
			if errors.Is(opErr, ErrCancelled) {
				return zero, opErr
			}
			lastErr = opErr
			inv.adaptRate(opErr)

			var upErr *UpstreamError
			if errors.As(opErr, &upErr) && !upErr.IsRetryable() {
				break
			}
		}

		if attempt == inv.config.MaxAttempts {
			break
		}

		wait := inv.backoff(attempt, lastErr)
		inv.logger.Debug("retrying",
			"name", inv.config.Name,
			"attempt", attempt,
			"wait", wait,
			"error", lastErr,
		)
		if inv.hooks.OnRetry != nil {
			inv.hooks.OnRetry(attempt, lastErr, wait)
		}
		if err := inv.sleeper.Sleep(ctx, wait); err != nil {
			return zero, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
	}

	entry := DeadLetterEntry{
		Payload:   payload,
		Err:       lastErr,
		Attempts:  attempts,
		Timestamp: time.Now(),
	}
	inv.dlq.Append(entry)
	inv.logger.Warn("call dead-lettered",
		"name", inv.config.Name,
		"payload", payload,
		"attempts", attempts,
		"error", lastErr,
	)
	if inv.hooks.OnDeadLetter != nil {
		inv.hooks.OnDeadLetter(entry)
	}

	return zero, &ExhaustedError{Attempts: attempts, Err: lastErr}
}

// attempt runs one admitted attempt: rate-limit wait, then the operation.
// done is always called exactly once. Cancellation reports success to the
// breaker: it is not evidence of upstream unhealthiness, and the admitted
// slot must be released either way.
func (inv *Invoker[T]) attempt(ctx context.Context, op Operation[T], done func(success bool)) (T, error) {
	var zero T

	if err := inv.limiter.Wait(ctx); err != nil {
		done(true)
		return zero, err
	}

	result, err := op(ctx)
	if err == nil {
		done(true)
		return result, nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		done(true)
		return zero, fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	done(false)
	return zero, err
}

// adaptRate applies an upstream-advertised rate carried on a failure.
// Invalid rates are logged and ignored; the previous rate is retained.
func (inv *Invoker[T]) adaptRate(err error) {
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || upErr.NewRatePerSecond == 0 {
		return
	}
	if updateErr := inv.limiter.UpdateRate(upErr.NewRatePerSecond); updateErr != nil {
		inv.logger.Warn("ignoring invalid rate signal",
			"name", inv.config.Name,
			"rate", upErr.NewRatePerSecond,
			"error", updateErr,
		)
	}
}

func (inv *Invoker[T]) backoff(attempt int, err error) time.Duration {
	var upErr *UpstreamError
	if errors.As(err, &upErr) && upErr.RetryAfter > 0 {
		return upErr.RetryAfter
	}

	backoff := float64(inv.config.RetryBaseWait) * math.Pow(inv.config.RetryFactor, float64(attempt-1))
	if backoff > float64(inv.config.RetryMaxWait) {
		backoff = float64(inv.config.RetryMaxWait)
	}

	// Add jitter
	if inv.config.RetryJitter > 0 {
		jitterRange := int64(backoff * inv.config.RetryJitter)
		if jitterRange > 0 {
			jitter, randErr := rand.Int(rand.Reader, big.NewInt(jitterRange*2))
			if randErr == nil {
				backoff += float64(jitter.Int64()) - float64(jitterRange)
			}
		}
	}

	return time.Duration(backoff)
}

// RateLimiter returns the invoker's shared rate limiter.
func (inv *Invoker[T]) RateLimiter() *RateLimiter {
	return inv.limiter
}

// Breaker returns the invoker's shared circuit breaker.
func (inv *Invoker[T]) Breaker() *CircuitBreaker {
	return inv.breaker
}

// DeadLetters returns the invoker's dead-letter queue for external
// draining.
func (inv *Invoker[T]) DeadLetters() *DeadLetterQueue {
	return inv.dlq
}
