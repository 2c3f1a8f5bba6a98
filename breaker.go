package resiligo

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/resiligo/internal/validate"
)

// State is the circuit breaker state. Its string forms are "closed",
// "half-open" and "open".
type State = gobreaker.State

// Circuit breaker states.
const (
	StateClosed   = gobreaker.StateClosed
	StateHalfOpen = gobreaker.StateHalfOpen
	StateOpen     = gobreaker.StateOpen
)

// BreakerConfig holds circuit breaker configuration.
type BreakerConfig struct {
	// Name identifies the breaker in hooks and logs.
	Name string

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32

	// RecoveryTimeout is how long the breaker stays open before admitting
	// a single half-open probe.
	RecoveryTimeout time.Duration

	// OnStateChange fires on every state transition.
	OnStateChange func(name string, from, to string)
}

// CircuitBreaker stops calling a failing upstream after FailureThreshold
// consecutive failures and probes recovery with exactly one call once
// RecoveryTimeout has elapsed.
//
// Admission and outcome recording are split: Allow admits a call and hands
// back the done callback that records its result. While the half-open probe
// is in flight, every other caller is rejected as if the breaker were still
// open.
type CircuitBreaker struct {
	cb *gobreaker.TwoStepCircuitBreaker[struct{}]
}

// NewCircuitBreaker creates a circuit breaker with the given configuration.
func NewCircuitBreaker(cfg BreakerConfig) (*CircuitBreaker, error) {
	if err := validate.Required("name", cfg.Name); err != nil {
		return nil, NewConfigError("name", "is required")
	}
	if cfg.FailureThreshold == 0 {
		return nil, NewConfigError("failure_threshold", "must be positive")
	}
	if err := validate.PositiveDuration("recovery_timeout", cfg.RecoveryTimeout); err != nil {
		return nil, NewConfigError("recovery_timeout", "must be positive")
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1, // exactly one half-open probe
		Interval:    0, // failure counts reset only on success or transition
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	}

	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, from.String(), to.String())
		}
	}

	return &CircuitBreaker{
		cb: gobreaker.NewTwoStepCircuitBreaker[struct{}](settings),
	}, nil
}

// Allow reports whether a call may proceed, consuming the sole half-open
// probe slot if applicable. On admission it returns a done callback that
// must be called exactly once with the call's outcome. On rejection it
// returns an error matching ErrCircuitOpen.
func (b *CircuitBreaker) Allow() (done func(success bool), err error) {
	record, err := b.cb.Allow()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return func(success bool) {
		record(success)
	}, nil
}

// Name returns the breaker's name.
func (b *CircuitBreaker) Name() string {
	return b.cb.Name()
}

// State returns the current state, advancing open to half-open if the
// recovery timeout has elapsed.
func (b *CircuitBreaker) State() State {
	return b.cb.State()
}

// ConsecutiveFailures returns the current consecutive failure count.
func (b *CircuitBreaker) ConsecutiveFailures() uint32 {
	return b.cb.Counts().ConsecutiveFailures
}

// Counts returns the breaker's internal counters.
func (b *CircuitBreaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}
