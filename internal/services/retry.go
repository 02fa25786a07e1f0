package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 30 * time.Second
)

// RetryConfig controls how remote writes are retried. Delays double on
// every attempt with no jitter, so they are strictly increasing.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Timer replaces the real timer in tests; nil uses time.Timer
	Timer backoff.Timer
	// OnRetry is called with the failure and the wait before the next attempt
	OnRetry func(err error, wait time.Duration)
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultInitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = DefaultMaxInterval
	}
	return c
}

func (c RetryConfig) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.MaxAttempts-1)), ctx)
}

// run calls op until it succeeds, fails permanently or runs out of attempts.
// It returns the number of attempts made and the last error.
func (c RetryConfig) run(ctx context.Context, op func() error) (int, error) {
	c = c.withDefaults()
	attempts := 0
	err := backoff.RetryNotifyWithTimer(func() error {
		attempts++
		err := op()
		if err != nil && IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}, c.policy(ctx), c.OnRetry, c.Timer)
	return attempts, err
}
