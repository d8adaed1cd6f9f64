package cinesnap

import (
	"math/rand/v2"

	"github.com/darkostanimirovic/cinesnap/catalog"
	"github.com/darkostanimirovic/cinesnap/internal/logging"
	"github.com/darkostanimirovic/cinesnap/internal/retry"
	"github.com/darkostanimirovic/cinesnap/providers"
)

// Type aliases for internal package types.
type (
	RetryConfig   = retry.RetryConfig
	LoggingConfig = logging.LoggingConfig
)

// Function re-exports for convenience.
var (
	DefaultRetryConfig   = retry.DefaultRetryConfig
	DefaultLoggingConfig = logging.DefaultLoggingConfig
)

const (
	defaultModel              = "gemini-2.0-flash"
	defaultMovieCap           = 6
	defaultSuggestionCount    = 3
	defaultMaxConcurrentTools = 4
)

// Config holds assistant configuration.
type Config struct {
	Provider providers.Provider
	Catalog  catalog.Catalog

	Model       string
	Temperature float32
	TopP        float32
	MaxTokens   int

	// MovieCap bounds the movies collected across all tool calls of a turn.
	MovieCap int
	// SuggestionCount is the number of follow-up prompts per reply.
	SuggestionCount int
	// MaxConcurrentTools bounds parallel catalog requests within a turn.
	MaxConcurrentTools int

	// SessionID keys persistence and tracing. Generated when empty.
	SessionID string
	// Store persists the transcript after every committed turn. Optional.
	Store TranscriptStore
	// InitialContext seeds the preference context.
	InitialContext *UserContext

	Retry   *RetryConfig
	Timeout *TimeoutConfig
	Logging *LoggingConfig
	Tracer  Tracer

	// Rand drives suggestion sampling. Seeded randomly when nil.
	Rand *rand.Rand
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Provider == nil {
		return ErrMissingProvider
	}
	if c.Catalog == nil {
		return ErrMissingCatalog
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return ErrInvalidTemperature
	}
	if c.TopP < 0.0 || c.TopP > 1.0 {
		return ErrInvalidTopP
	}
	if c.MaxTokens < 0 {
		return ErrInvalidMaxTokens
	}
	if c.MovieCap < 1 || c.MovieCap > 20 {
		return ErrInvalidMovieCap
	}
	if c.MaxConcurrentTools < 1 || c.MaxConcurrentTools > 16 {
		return ErrInvalidToolConcurrency
	}
	if c.SuggestionCount < 0 || c.SuggestionCount > len(followUpSuggestions) {
		return ErrInvalidSuggestionCount
	}
	// The first model call is retried at most once.
	if c.Retry != nil && (c.Retry.MaxRetries < 0 || c.Retry.MaxRetries > 1) {
		return ErrInvalidRetries
	}
	return nil
}

// DefaultConfig returns the generation settings the assistant was tuned with.
// Provider and Catalog must still be set.
func DefaultConfig() Config {
	return Config{
		Model:              defaultModel,
		Temperature:        0.7,
		TopP:               0.8,
		MaxTokens:          2048,
		MovieCap:           defaultMovieCap,
		SuggestionCount:    defaultSuggestionCount,
		MaxConcurrentTools: defaultMaxConcurrentTools,
	}
}
