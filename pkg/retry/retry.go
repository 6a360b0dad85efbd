package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	Attempts int           // Total number of attempts, minimum 1
	Delay    time.Duration // Fixed pause between attempts
}

// DefaultConfig returns a default retry configuration
func DefaultConfig() Config {
	return Config{
		Attempts: 3,
		Delay:    2 * time.Second,
	}
}

// Do executes a function up to cfg.Attempts times with a fixed delay
// between attempts. No delay is taken after the final attempt.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	_, err := DoWithResult(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult executes a function that returns a result up to cfg.Attempts
// times with a fixed delay between attempts.
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T

	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil // Success
		}

		lastErr = err

		// Don't sleep after the last attempt
		if attempt == attempts || cfg.Delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled during wait: %w", ctx.Err())
		case <-time.After(cfg.Delay):
		}
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
