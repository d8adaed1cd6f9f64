package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/darkostanimirovic/cinesnap"
	"github.com/darkostanimirovic/cinesnap/catalog"
	"github.com/darkostanimirovic/cinesnap/internal/config"
	"github.com/darkostanimirovic/cinesnap/providers"
	"github.com/darkostanimirovic/cinesnap/providers/gemini"
	"github.com/darkostanimirovic/cinesnap/providers/openai"
	"github.com/darkostanimirovic/cinesnap/stores/redisstore"
)

// deps are the long-lived collaborators shared by every session.
type deps struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider providers.Provider
	catalog  catalog.Catalog
	store    cinesnap.TranscriptStore
	tracer   cinesnap.Tracer

	closers []func(context.Context) error
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func buildDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{cfg: cfg, logger: logger, tracer: &cinesnap.NoOpTracer{}}

	switch cfg.Provider {
	case "openai":
		d.provider = openai.New(cfg.OpenAIAPIKey, logger, openai.WithBaseURL(cfg.OpenAIURL))
	default:
		p, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey}, logger)
		if err != nil {
			return nil, err
		}
		d.provider = p
	}

	tmdb, err := catalog.NewTMDB(catalog.TMDBConfig{
		APIKey:  cfg.TMDBAPIKey,
		BaseURL: cfg.TMDBBaseURL,
		Timeout: cfg.TMDBTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	d.catalog = tmdb

	if cfg.RedisURL != "" {
		store, err := redisstore.Open(ctx, cfg.RedisURL, redisstore.WithTTL(cfg.SessionTTL))
		if err != nil {
			return nil, err
		}
		d.store = store
		d.closers = append(d.closers, func(context.Context) error { return store.Close() })
	} else {
		d.store = cinesnap.NewMemoryTranscriptStore()
	}

	if cfg.EnableTracing {
		tracer, err := cinesnap.NewOTelTracer(ctx, cinesnap.OTelConfig{
			Endpoint:    cfg.OTLPEndpoint,
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		})
		if err != nil {
			return nil, err
		}
		d.tracer = tracer
		d.closers = append(d.closers, tracer.Shutdown)
	}

	logger.Info("dependencies ready",
		"provider", d.provider.Name(),
		"model", cfg.ModelName(),
		"redis", cfg.RedisURL != "",
		"tracing", cfg.EnableTracing,
	)
	return d, nil
}

// assistantConfig builds the per-session assistant configuration.
func (d *deps) assistantConfig(sessionID string) cinesnap.Config {
	logging := cinesnap.DefaultLoggingConfig()
	logging.Logger = d.logger
	logging.LogPrompts = d.cfg.LogPrompts
	logging.PromptLogPath = d.cfg.PromptLogPath

	timeouts := cinesnap.DefaultTimeoutConfig()
	timeouts.Turn = d.cfg.TurnTimeout
	timeouts.ModelCall = d.cfg.ModelCallTimeout
	timeouts.ToolCall = d.cfg.TMDBTimeout

	cfg := cinesnap.DefaultConfig()
	cfg.Provider = d.provider
	cfg.Catalog = d.catalog
	cfg.Model = d.cfg.ModelName()
	cfg.Temperature = d.cfg.Temperature
	cfg.TopP = d.cfg.TopP
	cfg.MaxTokens = d.cfg.MaxTokens
	cfg.MovieCap = d.cfg.MovieCap
	cfg.MaxConcurrentTools = d.cfg.MaxConcurrentTools
	cfg.SessionID = sessionID
	cfg.Store = d.store
	cfg.Logging = &logging
	cfg.Timeout = &timeouts
	cfg.Tracer = d.tracer
	return cfg
}

func (d *deps) close(ctx context.Context) {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](ctx); err != nil {
			d.logger.Warn("shutdown step failed", "error", err)
		}
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

var stderr io.Writer = os.Stderr
