// Package resiligo provides a client-side resilience layer for calls to an
// unreliable upstream API.
//
// resiligo wraps a single logical call with adaptive rate limiting, circuit
// breaking, and retry with exponential backoff. Calls that exhaust all
// attempts are captured in a dead-letter queue for later inspection instead
// of being silently dropped.
//
// # Quick Start
//
//	inv, err := resiligo.New[*SearchResult](resiligo.DefaultConfig(),
//	    resiligo.WithRetries(5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := inv.Invoke(ctx, "q=golang", func(ctx context.Context) (*SearchResult, error) {
//	    return upstream.Search(ctx, "golang")
//	})
//
// # Adaptive Rate
//
// When the upstream advertises a new limit, return a rate-limit signal from
// the operation and the invoker adjusts its token bucket before the next
// attempt:
//
//	return nil, resiligo.NewRateLimitSignal("slow down", 10)
//
// # Dead Letters
//
// Exhausted calls surface an ExhaustedError and land in the dead-letter
// queue, which an external consumer drains for alerting or replay:
//
//	for _, entry := range inv.DeadLetters().Drain() {
//	    log.Printf("gave up on %s after %d attempts: %v", entry.Payload, entry.Attempts, entry.Err)
//	}
//
// # Features
//
//   - Circuit breaker with sony/gobreaker
//   - Token-bucket rate limiting with runtime rate updates
//   - Retry with exponential backoff and crypto jitter
//   - Bounded dead-letter queue with atomic drain
//   - Cancellable at every suspension point
//   - Structured logging with slog
//   - Observability hooks for state changes, rate updates, retries and
//     dead-letter appends
package resiligo
