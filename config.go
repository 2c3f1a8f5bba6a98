package resiligo

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/prilive-com/resiligo/internal/validate"
)

// Config holds invoker configuration.
type Config struct {
	// Name identifies the protected endpoint in logs and hooks.
	Name string

	// Rate limiting
	Capacity   int     // Token bucket size
	InitialRPS float64 // Initial refill rate in tokens per second. 0 = no refill.

	// Circuit breaker
	FailureThreshold uint32        // Consecutive failures before opening
	RecoveryTimeout  time.Duration // Open duration before the half-open probe

	// Retry settings
	MaxAttempts   int
	RetryBaseWait time.Duration
	RetryMaxWait  time.Duration
	RetryFactor   float64
	RetryJitter   float64 // Jitter factor in [0, 1). 0 = deterministic delays.

	// Dead-letter queue
	DeadLetterCapacity int // Entries retained before dropping the oldest. 0 = unbounded.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Name:               "resiligo",
		Capacity:           200,
		InitialRPS:         100,
		FailureThreshold:   5,
		RecoveryTimeout:    15 * time.Second,
		MaxAttempts:        6,
		RetryBaseWait:      300 * time.Millisecond,
		RetryMaxWait:       30 * time.Second,
		RetryFactor:        2.0,
		RetryJitter:        0.2,
		DeadLetterCapacity: 10000,
	}
}

// Validate checks the configuration for construction-time errors.
// Invalid configuration is fatal and never retried.
func (c Config) Validate() error {
	checks := []error{
		validate.Required("name", c.Name),
		validate.Positive("capacity", c.Capacity),
		validate.NonNegativeFloat("initial_rps", c.InitialRPS),
		validate.Positive("failure_threshold", int(c.FailureThreshold)),
		validate.PositiveDuration("recovery_timeout", c.RecoveryTimeout),
		validate.Positive("max_attempts", c.MaxAttempts),
		validate.PositiveDuration("retry_base_wait", c.RetryBaseWait),
		validate.PositiveDuration("retry_max_wait", c.RetryMaxWait),
		validate.AtLeastFloat("retry_factor", c.RetryFactor, 1),
		validate.InRangeFloat("retry_jitter", c.RetryJitter, 0, 1),
		validate.NonNegative("dead_letter_capacity", c.DeadLetterCapacity),
	}
	for _, err := range checks {
		var vErr *validate.Error
		if errors.As(err, &vErr) {
			return NewConfigError(vErr.Field, vErr.Message)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if name := getEnv("RESILIGO_NAME", ""); name != "" {
		cfg.Name = name
	}

	if i, err := strconv.Atoi(getEnv("RESILIGO_CAPACITY", "200")); err == nil {
		cfg.Capacity = i
	}

	if f, err := strconv.ParseFloat(getEnv("RESILIGO_INITIAL_RPS", "100"), 64); err == nil {
		cfg.InitialRPS = f
	}

	if i, err := strconv.ParseUint(getEnv("RESILIGO_FAILURE_THRESHOLD", "5"), 10, 32); err == nil {
		cfg.FailureThreshold = uint32(i)
	}

	if d, err := time.ParseDuration(getEnv("RESILIGO_RECOVERY_TIMEOUT", "15s")); err == nil {
		cfg.RecoveryTimeout = d
	}

	if i, err := strconv.Atoi(getEnv("RESILIGO_MAX_ATTEMPTS", "6")); err == nil {
		cfg.MaxAttempts = i
	}

	if d, err := time.ParseDuration(getEnv("RESILIGO_RETRY_BASE_WAIT", "300ms")); err == nil {
		cfg.RetryBaseWait = d
	}

	if d, err := time.ParseDuration(getEnv("RESILIGO_RETRY_MAX_WAIT", "30s")); err == nil {
		cfg.RetryMaxWait = d
	}

	if f, err := strconv.ParseFloat(getEnv("RESILIGO_RETRY_FACTOR", "2.0"), 64); err == nil {
		cfg.RetryFactor = f
	}

	if f, err := strconv.ParseFloat(getEnv("RESILIGO_RETRY_JITTER", "0.2"), 64); err == nil {
		cfg.RetryJitter = f
	}

	if i, err := strconv.Atoi(getEnv("RESILIGO_DEAD_LETTER_CAPACITY", "10000")); err == nil {
		cfg.DeadLetterCapacity = i
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
