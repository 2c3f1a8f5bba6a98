package resiligo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/resiligo"
	"github.com/prilive-com/resiligo/internal/testutil"
)

func TestOptions_OverrideConfig(t *testing.T) {
	inv, err := resiligo.New[string](testutil.AggressiveConfig(),
		resiligo.WithName("orders"),
		resiligo.WithRateLimit(42, 7),
		resiligo.WithDeadLetterCapacity(3),
	)
	require.NoError(t, err)

	assert.Equal(t, "orders", inv.Breaker().Name())
	assert.Equal(t, float64(42), inv.RateLimiter().Rate())
	assert.Equal(t, 7, inv.RateLimiter().Capacity())
	assert.Equal(t, 3, inv.DeadLetters().Capacity())
}

func TestOptions_ValidatedAfterApplication(t *testing.T) {
	cfg := testutil.AggressiveConfig()

	_, err := resiligo.New[string](cfg, resiligo.WithRetries(0))
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)

	_, err = resiligo.New[string](cfg, resiligo.WithJitter(1.5))
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)

	_, err = resiligo.New[string](cfg, resiligo.WithRateLimit(10, 0))
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)

	_, err = resiligo.New[string](cfg, resiligo.WithBreaker(0, time.Second))
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)

	_, err = resiligo.New[string](cfg, resiligo.WithBackoff(0, time.Second, 2))
	assert.ErrorIs(t, err, resiligo.ErrInvalidConfig)
}

func TestOptions_BreakerSettingsApplied(t *testing.T) {
	cfg := testutil.AggressiveConfig()
	cfg.MaxAttempts = 1

	inv, err := resiligo.New[string](cfg, resiligo.WithBreaker(1, time.Hour))
	require.NoError(t, err)

	done, allowErr := inv.Breaker().Allow()
	require.NoError(t, allowErr)
	done(false)

	assert.Equal(t, resiligo.StateOpen, inv.Breaker().State(), "threshold of one should open on the first failure")
}
