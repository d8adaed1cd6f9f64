package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/darkostanimirovic/cinesnap/providers"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if cfg.MaxRetries != 1 {
		t.Errorf("expected MaxRetries 1, got %d", cfg.MaxRetries)
	}
	if cfg.InitialDelay != 500*time.Millisecond {
		t.Errorf("expected InitialDelay 500ms, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 2*time.Second {
		t.Errorf("expected MaxDelay 2s, got %v", cfg.MaxDelay)
	}
}

func TestRetryConfig_IsRetryable(t *testing.T) {
	cfg := DefaultRetryConfig()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"rate limit error", providers.ErrRateLimited, true},
		{"timeout error", providers.ErrTimeout, true},
		{"server error", providers.ErrServerError, true},
		{"wrapped server error", fmt.Errorf("openai: %w: boom", providers.ErrServerError), true},
		{"non-retryable error", errors.New("invalid api key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestRetryConfig_CalculateDelay(t *testing.T) {
	cfg := RetryConfig{InitialDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond, Multiplier: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 300 * time.Millisecond},
		{5, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := cfg.CalculateDelay(tt.attempt); got != tt.want {
			t.Errorf("CalculateDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func fastConfig() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	return cfg
}

func TestWithRetry_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), fastConfig(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", providers.ErrServerError
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" || calls != 2 {
		t.Errorf("expected ok after 2 calls, got %q after %d", result, calls)
	}
}

func TestWithRetry_RetriesAtMostOnce(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		return 0, providers.ErrRateLimited
	})
	if !errors.Is(err, providers.ErrRateLimited) {
		t.Fatalf("expected wrapped rate limit error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad request")
	_, err := WithRetry(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		return 0, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestWithRetry_ContextCancelledDuringBackoff(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	_, err := WithRetry(ctx, cfg, func(context.Context) (int, error) {
		cancel()
		return 0, providers.ErrTimeout
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
