// Package server exposes assistant sessions over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/darkostanimirovic/cinesnap/catalog"
)

// Options configures the HTTP server.
type Options struct {
	Registry        *Registry
	Catalog         catalog.Catalog // nil disables /v1/movies
	Gatherer        prometheus.Gatherer // nil disables /metrics
	Logger          *slog.Logger
	ServiceName     string
	Environment     string
	ShutdownTimeout time.Duration
}

// Server wraps the gin engine with graceful shutdown helpers.
type Server struct {
	opts     Options
	engine   *gin.Engine
	registry *Registry
	log      *slog.Logger
}

// New constructs the server with its middleware and routes.
func New(opts Options) *Server {
	if opts.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:     opts,
		engine:   gin.New(),
		registry: opts.Registry,
		log:      opts.Logger,
	}
	s.engine.Use(gin.Recovery(), requestLogger(opts.Logger))
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "sessions": s.registry.Len()})
	})
	if s.opts.Gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	h := &sessionHandler{registry: s.registry, log: s.log.With("handler", "session")}
	v1 := s.engine.Group("/v1/sessions")
	v1.POST("", h.Create)
	v1.POST("/:id/turns", h.Turn)
	v1.GET("/:id/history", h.History)
	v1.GET("/:id/context", h.Context)
	v1.PATCH("/:id/context", h.UpdateContext)
	v1.POST("/:id/reset", h.Reset)
	v1.DELETE("/:id", h.Delete)

	if s.opts.Catalog != nil {
		mh := &movieHandler{catalog: s.opts.Catalog, log: s.log.With("handler", "movie")}
		s.engine.GET("/v1/movies/:id", mh.Details)
	}
}

// Run starts the HTTP listener and shuts down gracefully when ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", addr)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutting down HTTP server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
