package resiligo_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/resiligo"
)

func TestRateLimiter_InvalidConstruction(t *testing.T) {
	_, err := resiligo.NewRateLimiter(0, 10)
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)

	_, err = resiligo.NewRateLimiter(-1, 10)
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)

	_, err = resiligo.NewRateLimiter(5, -0.5)
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)
}

func TestRateLimiter_ZeroRateAdmitsExactlyCapacity(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(5, 0)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.TryAcquire(), "acquisition %d should be admitted", i+1)
	}

	// No refill at rate zero, ever
	for i := 0; i < 3; i++ {
		assert.False(t, rl.TryAcquire())
	}
	time.Sleep(50 * time.Millisecond)
	assert.False(t, rl.TryAcquire())
}

func TestRateLimiter_TokensStayWithinBounds(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(3, 1000)
	require.NoError(t, err)

	// Bucket starts full and refill never exceeds capacity
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, rl.Tokens(), float64(3))

	assert.True(t, rl.TryAcquireN(3))
	assert.GreaterOrEqual(t, rl.Tokens(), float64(0))
}

func TestRateLimiter_DrainedBucketRejects(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(3, 1)
	require.NoError(t, err)

	assert.True(t, rl.TryAcquireN(3))
	assert.False(t, rl.TryAcquire(), "empty bucket should reject at 1 RPS")
}

func TestRateLimiter_UpdateRateRejectsNonPositive(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(10, 7)
	require.NoError(t, err)

	assert.ErrorIs(t, rl.UpdateRate(0), resiligo.ErrInvalidConfig)
	assert.ErrorIs(t, rl.UpdateRate(-3), resiligo.ErrInvalidConfig)
	assert.Equal(t, float64(7), rl.Rate(), "previous rate should be retained")
}

func TestRateLimiter_UpdateRateChangesRefillTiming(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(10, 1)
	require.NoError(t, err)

	// Drain the bucket; at 1 RPS the next token is a second away
	assert.True(t, rl.TryAcquireN(10))
	assert.False(t, rl.TryAcquire())

	require.NoError(t, rl.UpdateRate(100))
	assert.Equal(t, float64(100), rl.Rate())

	// Tokens are preserved across the update, not reset to full
	assert.Less(t, rl.Tokens(), float64(1))

	// At 100 RPS a token arrives within ~10ms
	time.Sleep(100 * time.Millisecond)
	assert.True(t, rl.TryAcquire(), "new rate should refill within the wait")
}

func TestRateLimiter_UpdateRateFiresHook(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(10, 50)
	require.NoError(t, err)

	var gotOld, gotNew float64
	rl.OnRateUpdate(func(oldRPS, newRPS float64) {
		gotOld, gotNew = oldRPS, newRPS
	})

	require.NoError(t, rl.UpdateRate(10))
	assert.Equal(t, float64(50), gotOld)
	assert.Equal(t, float64(10), gotNew)
}

func TestRateLimiter_WaitCancellation(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(1, 0.1)
	require.NoError(t, err)

	// Drain; the next token is 10 seconds away
	require.True(t, rl.TryAcquire())

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(50*time.Millisecond, cancel)
	defer timer.Stop()

	start := time.Now()
	err = rl.Wait(ctx)
	assert.ErrorIs(t, err, resiligo.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation should interrupt the wait")
}

func TestRateLimiter_ConcurrentTryAcquire(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(50, 0)
	require.NoError(t, err)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.TryAcquire() {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), admitted.Load(), "exactly capacity callers should be admitted")
}

func TestRateLimiter_CapacityFixedAtConstruction(t *testing.T) {
	rl, err := resiligo.NewRateLimiter(5, 1)
	require.NoError(t, err)

	require.NoError(t, rl.UpdateRate(1000))
	assert.Equal(t, 5, rl.Capacity())

	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, rl.Tokens(), float64(5), "rate changes never grow the bucket")
}
