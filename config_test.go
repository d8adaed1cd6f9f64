package cinesnap

import (
	"errors"
	"testing"

	"github.com/darkostanimirovic/cinesnap/internal/testutil"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Provider = NewMockLLM()
	cfg.Catalog = &testutil.Catalog{}
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing provider", func(c *Config) { c.Provider = nil }, ErrMissingProvider},
		{"missing catalog", func(c *Config) { c.Catalog = nil }, ErrMissingCatalog},
		{"missing model", func(c *Config) { c.Model = "" }, ErrMissingModel},
		{"temperature", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"top p", func(c *Config) { c.TopP = -0.1 }, ErrInvalidTopP},
		{"max tokens", func(c *Config) { c.MaxTokens = -1 }, ErrInvalidMaxTokens},
		{"movie cap", func(c *Config) { c.MovieCap = 21 }, ErrInvalidMovieCap},
		{"concurrency", func(c *Config) { c.MaxConcurrentTools = 0 }, ErrInvalidToolConcurrency},
		{"suggestions", func(c *Config) { c.SuggestionCount = 7 }, ErrInvalidSuggestionCount},
		{"too many retries", func(c *Config) { c.Retry = &RetryConfig{MaxRetries: 5} }, ErrInvalidRetries},
		{"negative retries", func(c *Config) { c.Retry = &RetryConfig{MaxRetries: -1} }, ErrInvalidRetries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNew_FillsDefaults(t *testing.T) {
	a, err := New(Config{Provider: NewMockLLM(), Catalog: &testutil.Catalog{}, Logging: LoggingConfig{}.Silent()})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, a.model, defaultModel)
	testutil.AssertEqual(t, a.movieCap, defaultMovieCap)
	testutil.AssertEqual(t, a.suggestionCount, defaultSuggestionCount)
	testutil.AssertEqual(t, a.maxConcurrentTools, defaultMaxConcurrentTools)
	if a.SessionID() == "" {
		t.Error("expected a generated session id")
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Catalog: &testutil.Catalog{}})
	if !errors.Is(err, ErrMissingProvider) {
		t.Errorf("expected ErrMissingProvider, got %v", err)
	}
}

func TestNew_InitialContext(t *testing.T) {
	a, err := New(Config{
		Provider:       NewMockLLM(),
		Catalog:        &testutil.Catalog{},
		InitialContext: &UserContext{TimeOfDay: Ptr("late night")},
		Logging:        LoggingConfig{}.Silent(),
	})
	testutil.AssertNoError(t, err)

	uc := a.UserContext()
	if uc.TimeOfDay == nil || *uc.TimeOfDay != "late night" {
		t.Errorf("expected seeded timeOfDay, got %+v", uc)
	}
}
