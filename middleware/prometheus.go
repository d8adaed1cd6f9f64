package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/darkostanimirovic/cinesnap/providers"
)

// Prometheus records turn, model call and tool call metrics.
type Prometheus struct {
	BaseMiddleware

	turnsTotal    *prometheus.CounterVec
	turnDuration  *prometheus.HistogramVec
	moviesPerTurn prometheus.Histogram
	modelCalls    *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
	modelTokens   *prometheus.CounterVec
	toolCalls     *prometheus.CounterVec
	toolDuration  *prometheus.HistogramVec
}

// NewPrometheus registers the collectors on reg, or on the default
// registerer when reg is nil.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Prometheus{
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinesnap",
				Subsystem: "assistant",
				Name:      "turns_total",
				Help:      "Total number of conversation turns",
			},
			[]string{"status", "fallback", "discarded"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cinesnap",
				Subsystem: "assistant",
				Name:      "turn_duration_seconds",
				Help:      "Turn duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
			},
			[]string{"status"},
		),
		moviesPerTurn: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "cinesnap",
				Subsystem: "assistant",
				Name:      "movies_per_turn",
				Help:      "Number of movies returned per turn",
				Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
			},
		),
		modelCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinesnap",
				Subsystem: "model",
				Name:      "calls_total",
				Help:      "Total language-model calls",
			},
			[]string{"phase", "status"},
		),
		modelDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cinesnap",
				Subsystem: "model",
				Name:      "call_duration_seconds",
				Help:      "Language-model call duration in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"phase"},
		),
		modelTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinesnap",
				Subsystem: "model",
				Name:      "tokens_total",
				Help:      "Tokens consumed by language-model calls",
			},
			[]string{"type"},
		),
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cinesnap",
				Subsystem: "catalog",
				Name:      "tool_calls_total",
				Help:      "Total catalog tool calls",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cinesnap",
				Subsystem: "catalog",
				Name:      "tool_call_duration_seconds",
				Help:      "Catalog tool call duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 8},
			},
			[]string{"tool"},
		),
	}
}

type startKey struct{ name string }

var (
	turnStartKey  = startKey{"turn"}
	modelStartKey = startKey{"model"}
	toolStartKey  = startKey{"tool"}
)

func withStart(ctx context.Context, key startKey) context.Context {
	return context.WithValue(ctx, key, time.Now())
}

func since(ctx context.Context, key startKey) (time.Duration, bool) {
	start, ok := ctx.Value(key).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}

func (p *Prometheus) OnTurnStart(ctx context.Context, _ string) context.Context {
	return withStart(ctx, turnStartKey)
}

func (p *Prometheus) OnTurnComplete(_ context.Context, outcome TurnOutcome, _ error) {
	p.turnsTotal.WithLabelValues(outcome.Status, boolLabel(outcome.Fallback), boolLabel(outcome.Discarded)).Inc()
	p.turnDuration.WithLabelValues(outcome.Status).Observe(outcome.Duration.Seconds())
	p.moviesPerTurn.Observe(float64(outcome.Movies))
}

func (p *Prometheus) OnModelCall(ctx context.Context, _ string, _ providers.CompletionRequest) context.Context {
	return withStart(ctx, modelStartKey)
}

func (p *Prometheus) OnModelResponse(ctx context.Context, phase string, resp *providers.CompletionResponse, err error) {
	p.modelCalls.WithLabelValues(phase, statusLabel(err)).Inc()
	if d, ok := since(ctx, modelStartKey); ok {
		p.modelDuration.WithLabelValues(phase).Observe(d.Seconds())
	}
	if resp != nil {
		p.modelTokens.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
		p.modelTokens.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))
	}
}

func (p *Prometheus) OnToolStart(ctx context.Context, _ string, _ any) context.Context {
	return withStart(ctx, toolStartKey)
}

func (p *Prometheus) OnToolComplete(ctx context.Context, tool string, _ int, err error) {
	p.toolCalls.WithLabelValues(tool, statusLabel(err)).Inc()
	if d, ok := since(ctx, toolStartKey); ok {
		p.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
