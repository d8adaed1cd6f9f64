// Package config loads the cinesnap binary's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the environment driven configuration for the cinesnap binary.
type Config struct {
	// Service
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"cinesnap"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CINESNAP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"CINESNAP_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"CINESNAP_LOG_FORMAT" envDefault:"text"` // text or json
	LogPrompts      bool          `env:"CINESNAP_LOG_PROMPTS" envDefault:"false"`
	PromptLogPath   string        `env:"CINESNAP_PROMPT_LOG_PATH"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Model
	Provider     string  `env:"CINESNAP_PROVIDER" envDefault:"gemini"` // gemini or openai
	Model        string  `env:"CINESNAP_MODEL"`
	GeminiAPIKey string  `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string  `env:"OPENAI_API_KEY"`
	OpenAIURL    string  `env:"OPENAI_BASE_URL"`
	Temperature  float32 `env:"CINESNAP_TEMPERATURE" envDefault:"0.7"`
	TopP         float32 `env:"CINESNAP_TOP_P" envDefault:"0.8"`
	MaxTokens    int     `env:"CINESNAP_MAX_TOKENS" envDefault:"2048"`

	// Catalog
	TMDBAPIKey  string        `env:"TMDB_API_KEY,notEmpty"`
	TMDBBaseURL string        `env:"TMDB_BASE_URL"`
	TMDBTimeout time.Duration `env:"TMDB_TIMEOUT" envDefault:"8s"`

	// Turn behavior
	MovieCap           int           `env:"CINESNAP_MOVIE_CAP" envDefault:"6"`
	MaxConcurrentTools int           `env:"CINESNAP_MAX_CONCURRENT_TOOLS" envDefault:"4"`
	TurnTimeout        time.Duration `env:"CINESNAP_TURN_TIMEOUT" envDefault:"60s"`
	ModelCallTimeout   time.Duration `env:"CINESNAP_MODEL_CALL_TIMEOUT" envDefault:"20s"`

	// Sessions
	RedisURL       string        `env:"REDIS_URL"` // empty keeps transcripts in memory
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// Tracing
	EnableTracing bool   `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.TMDBAPIKey = strings.TrimSpace(cfg.TMDBAPIKey)
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "gemini":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required when CINESNAP_PROVIDER is gemini")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required when CINESNAP_PROVIDER is openai")
		}
	default:
		return fmt.Errorf("unknown CINESNAP_PROVIDER %q (want gemini or openai)", c.Provider)
	}
	if c.EnableTracing && strings.TrimSpace(c.OTLPEndpoint) == "" {
		return errors.New("OTEL_EXPORTER_OTLP_ENDPOINT is required when ENABLE_TRACING is true")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("CINESNAP_PORT %d is out of range", c.HTTPPort)
	}
	return nil
}

// ModelName returns the configured model or the provider's default.
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == "openai" {
		return "gpt-4o-mini"
	}
	return "gemini-2.0-flash"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// LoadEnvFiles loads .env files that exist, later files overriding earlier
// ones. Missing files are skipped.
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
