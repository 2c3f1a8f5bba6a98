package resiligo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/prilive-com/resiligo/internal/validate"
)

// RateLimiter is a token bucket with a refill rate that can be adjusted at
// runtime, typically in response to an upstream-advertised limit.
//
// The bucket starts full and never holds more than its capacity, regardless
// of rate changes. All methods are safe for concurrent use.
type RateLimiter struct {
	limiter  *rate.Limiter
	capacity int

	mu       sync.Mutex // serializes rate swaps against hook delivery
	onUpdate func(oldRPS, newRPS float64)
}

// NewRateLimiter creates a rate limiter with the given bucket capacity and
// refill rate in tokens per second. A zero rate means the bucket never
// refills: exactly capacity acquisitions succeed, then all are rejected.
func NewRateLimiter(capacity int, rps float64) (*RateLimiter, error) {
	if err := validate.Positive("capacity", capacity); err != nil {
		return nil, NewConfigError("capacity", "must be positive")
	}
	if err := validate.NonNegativeFloat("rate_per_second", rps); err != nil {
		return nil, NewConfigError("rate_per_second", "cannot be negative")
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rps), capacity),
		capacity: capacity,
	}, nil
}

// TryAcquire attempts to take one token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	return r.limiter.Allow()
}

// TryAcquireN attempts to take cost tokens without blocking.
func (r *RateLimiter) TryAcquireN(cost int) bool {
	return r.limiter.AllowN(time.Now(), cost)
}

// Wait blocks until one token is available or ctx is cancelled. The wait is
// unbounded; cancellation returns an error matching ErrCancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		}
		return err
	}
	return nil
}

// UpdateRate replaces the refill rate. Accumulated tokens are preserved and
// the capacity is unchanged. Rates of zero or below are rejected with an
// error matching ErrInvalidConfig and the previous rate is retained.
func (r *RateLimiter) UpdateRate(rps float64) error {
	if rps <= 0 {
		return NewConfigError("rate_per_second", fmt.Sprintf("must be positive, got %g", rps))
	}

	r.mu.Lock()
	old := float64(r.limiter.Limit())
	r.limiter.SetLimit(rate.Limit(rps))
	fn := r.onUpdate
	r.mu.Unlock()

	if fn != nil {
		fn(old, rps)
	}
	return nil
}

// OnRateUpdate registers fn to fire after every successful UpdateRate with
// the previous and the new rate. Register before sharing the limiter.
func (r *RateLimiter) OnRateUpdate(fn func(oldRPS, newRPS float64)) {
	r.mu.Lock()
	r.onUpdate = fn
	r.mu.Unlock()
}

// Rate returns the current refill rate in tokens per second.
func (r *RateLimiter) Rate() float64 {
	return float64(r.limiter.Limit())
}

// Capacity returns the bucket capacity fixed at construction.
func (r *RateLimiter) Capacity() int {
	return r.capacity
}

// Tokens returns the number of tokens currently available.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
