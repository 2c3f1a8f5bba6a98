package resiligo

import "time"

// Hooks are optional observability callbacks fired by the invoker. The core
// implements no logging or metrics beyond its own slog output; hooks are the
// extension point for external collaborators.
//
// Hooks are invoked synchronously on the calling goroutine and must be safe
// for concurrent use.
type Hooks struct {
	// OnStateChange fires on every circuit breaker transition.
	// States are "closed", "half-open" and "open".
	OnStateChange func(name string, from, to string)

	// OnRateUpdate fires after the rate limiter adopts an
	// upstream-advertised rate.
	OnRateUpdate func(oldRPS, newRPS float64)

	// OnRetry fires before each backoff sleep with the failed attempt's
	// number, its error and the wait about to be taken.
	OnRetry func(attempt int, err error, wait time.Duration)

	// OnDeadLetter fires after an exhausted call is appended to the
	// dead-letter queue.
	OnDeadLetter func(entry DeadLetterEntry)
}
