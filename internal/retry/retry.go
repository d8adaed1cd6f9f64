// Package retry wraps a model call with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/darkostanimirovic/cinesnap/providers"
)

// RetryConfig configures retry behavior for model calls.
type RetryConfig struct {
	MaxRetries      int           // Additional attempts after the first (0 = no retries)
	InitialDelay    time.Duration // Delay before the first retry
	MaxDelay        time.Duration // Upper bound for any single delay
	Multiplier      float64       // Backoff multiplier
	RetryableErrors []error       // Errors that should trigger a retry
	Logger          *slog.Logger
}

// DefaultRetryConfig allows a single retry. User-facing latency matters more
// than resilience for a chat turn.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   1,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		RetryableErrors: []error{
			providers.ErrRateLimited,
			providers.ErrTimeout,
			providers.ErrServerError,
		},
	}
}

// IsRetryable checks if an error should trigger a retry.
func (rc RetryConfig) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	for _, retryableErr := range rc.RetryableErrors {
		if errors.Is(err, retryableErr) {
			return true
		}
	}
	return false
}

// CalculateDelay returns the backoff before retry number attempt+1.
func (rc RetryConfig) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rc.InitialDelay
	}

	multiplier := rc.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := time.Duration(float64(rc.InitialDelay) * math.Pow(multiplier, float64(attempt)))
	if rc.MaxDelay > 0 && delay > rc.MaxDelay {
		return rc.MaxDelay
	}
	return delay
}

// WithRetry runs fn until it succeeds, fails with a non-retryable error, or
// the retry budget is spent. The returned error always wraps the last error.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	var lastErr error

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("context cancelled: %w", err)
		}

		result, lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 0 {
				logger.Info("model call succeeded after retry", "attempt", attempt)
			}
			return result, nil
		}

		if !cfg.IsRetryable(lastErr) {
			return result, lastErr
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		delay := cfg.CalculateDelay(attempt)
		logger.Warn("model call failed, retrying",
			"attempt", attempt+1,
			"max_retries", cfg.MaxRetries,
			"delay", delay,
			"error", lastErr,
		)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return result, fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
		}
	}

	return result, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}
