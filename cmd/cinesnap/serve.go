package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/darkostanimirovic/cinesnap"
	"github.com/darkostanimirovic/cinesnap/internal/server"
	"github.com/darkostanimirovic/cinesnap/middleware"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the session API on CINESNAP_PORT.

Routes:
  POST   /v1/sessions
  POST   /v1/sessions/:id/turns
  GET    /v1/sessions/:id/history
  GET    /v1/sessions/:id/context
  PATCH  /v1/sessions/:id/context
  POST   /v1/sessions/:id/reset
  DELETE /v1/sessions/:id
  GET    /v1/movies/:id
  GET    /healthz
  GET    /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, stderr).With("service", cfg.ServiceName)

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		d.close(shutdownCtx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewPrometheus(reg)

	registry := server.NewRegistry(func(sessionID string) (*cinesnap.Assistant, error) {
		a, err := cinesnap.New(d.assistantConfig(sessionID))
		if err != nil {
			return nil, err
		}
		a.Use(metrics)
		return a, nil
	}, d.store, cfg.SessionIdleTTL, logger)
	go registry.Run(ctx)

	srv := server.New(server.Options{
		Registry:        registry,
		Catalog:         d.catalog,
		Gatherer:        reg,
		Logger:          logger,
		ServiceName:     cfg.ServiceName,
		Environment:     cfg.Environment,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	return srv.Run(ctx, cfg.Addr())
}
