package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prilive-com/resiligo"
	"github.com/stretchr/testify/require"
)

// Outcome is one scripted upstream response.
type Outcome struct {
	Value string
	Err   error
}

// Succeed scripts a successful response.
func Succeed(value string) Outcome {
	return Outcome{Value: value}
}

// Fail scripts a failing response.
func Fail(err error) Outcome {
	return Outcome{Err: err}
}

// FailN scripts n identical failing responses.
func FailN(n int, err error) []Outcome {
	outcomes := make([]Outcome, n)
	for i := range outcomes {
		outcomes[i] = Outcome{Err: err}
	}
	return outcomes
}

// Upstream is a scripted in-process stand-in for an unreliable API.
// Outcomes are played back in order; the last one repeats once the script
// runs out. Safe for concurrent callers.
type Upstream struct {
	mu       sync.Mutex
	outcomes []Outcome
	calls    int
}

// NewUpstream creates an upstream playing back the given outcomes.
func NewUpstream(outcomes ...Outcome) *Upstream {
	return &Upstream{outcomes: outcomes}
}

// NewUpstreamScript creates an upstream from outcome slices, so FailN
// results can be mixed with single outcomes.
func NewUpstreamScript(parts ...[]Outcome) *Upstream {
	var outcomes []Outcome
	for _, part := range parts {
		outcomes = append(outcomes, part...)
	}
	return &Upstream{outcomes: outcomes}
}

// Call is the wrapped operation to hand to an invoker.
func (u *Upstream) Call(ctx context.Context) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.outcomes) == 0 {
		return "", errors.New("testutil: upstream has no scripted outcomes")
	}

	idx := u.calls
	if idx >= len(u.outcomes) {
		idx = len(u.outcomes) - 1
	}
	u.calls++

	outcome := u.outcomes[idx]
	return outcome.Value, outcome.Err
}

// Calls returns the number of times the upstream was invoked.
func (u *Upstream) Calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// AggressiveConfig returns a Config tuned for fast, deterministic tests:
// deterministic backoff (no jitter), a two-failure breaker threshold and a
// short recovery timeout.
func AggressiveConfig() resiligo.Config {
	cfg := resiligo.DefaultConfig()
	cfg.Name = "test"
	cfg.Capacity = 100
	cfg.InitialRPS = 1000
	cfg.FailureThreshold = 2
	cfg.RecoveryTimeout = 100 * time.Millisecond
	cfg.MaxAttempts = 3
	cfg.RetryBaseWait = time.Second
	cfg.RetryMaxWait = 30 * time.Second
	cfg.RetryFactor = 2.0
	cfg.RetryJitter = 0
	return cfg
}

// NeverTripConfig returns a Config whose breaker is effectively disabled.
// Use for retry tests that must not be disturbed by the breaker.
func NeverTripConfig() resiligo.Config {
	cfg := AggressiveConfig()
	cfg.FailureThreshold = 1 << 30
	cfg.RecoveryTimeout = time.Hour
	return cfg
}

// NewInvoker creates a string-valued invoker for tests, failing the test on
// configuration errors.
func NewInvoker(t *testing.T, cfg resiligo.Config, opts ...resiligo.Option) *resiligo.Invoker[string] {
	t.Helper()

	inv, err := resiligo.New[string](cfg, opts...)
	require.NoError(t, err)
	return inv
}
