package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/darkostanimirovic/cinesnap/providers"
)

func TestBaseMiddleware_ReturnsContextUnchanged(t *testing.T) {
	var m Middleware = BaseMiddleware{}
	ctx := context.WithValue(context.Background(), startKey{"x"}, 1)

	if got := m.OnTurnStart(ctx, "hi"); got != ctx {
		t.Error("OnTurnStart should return the given context")
	}
	if got := m.OnModelCall(ctx, "model_call_1", providers.CompletionRequest{}); got != ctx {
		t.Error("OnModelCall should return the given context")
	}
	if got := m.OnToolStart(ctx, "searchMovies", nil); got != ctx {
		t.Error("OnToolStart should return the given context")
	}
	m.OnTurnComplete(ctx, TurnOutcome{}, nil)
	m.OnModelResponse(ctx, "model_call_1", nil, nil)
	m.OnToolComplete(ctx, "searchMovies", 0, nil)
}

func TestPrometheus_RecordsTurn(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	ctx := p.OnTurnStart(context.Background(), "Surprise me!")
	p.OnTurnComplete(ctx, TurnOutcome{Status: "finished", Movies: 5, Duration: time.Second}, nil)
	p.OnTurnComplete(ctx, TurnOutcome{Status: "finished", Fallback: true}, nil)

	if got := testutil.ToFloat64(p.turnsTotal.WithLabelValues("finished", "false", "false")); got != 1 {
		t.Errorf("expected 1 plain finished turn, got %v", got)
	}
	if got := testutil.ToFloat64(p.turnsTotal.WithLabelValues("finished", "true", "false")); got != 1 {
		t.Errorf("expected 1 fallback turn, got %v", got)
	}
}

func TestPrometheus_RecordsModelCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	ctx := p.OnModelCall(context.Background(), "model_call_1", providers.CompletionRequest{})
	p.OnModelResponse(ctx, "model_call_1", &providers.CompletionResponse{
		Usage: providers.TokenUsage{PromptTokens: 10, CompletionTokens: 4, TotalTokens: 14},
	}, nil)
	p.OnModelResponse(ctx, "model_call_2", nil, errors.New("boom"))

	if got := testutil.ToFloat64(p.modelCalls.WithLabelValues("model_call_1", "ok")); got != 1 {
		t.Errorf("expected 1 ok call, got %v", got)
	}
	if got := testutil.ToFloat64(p.modelCalls.WithLabelValues("model_call_2", "error")); got != 1 {
		t.Errorf("expected 1 failed call, got %v", got)
	}
	if got := testutil.ToFloat64(p.modelTokens.WithLabelValues("prompt")); got != 10 {
		t.Errorf("expected 10 prompt tokens, got %v", got)
	}
}

func TestPrometheus_RecordsToolCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	ctx := p.OnToolStart(context.Background(), "getPopularMovies", nil)
	p.OnToolComplete(ctx, "getPopularMovies", 5, nil)
	p.OnToolComplete(ctx, "unknown", 0, errors.New("unknown tool"))

	if got := testutil.ToFloat64(p.toolCalls.WithLabelValues("getPopularMovies", "ok")); got != 1 {
		t.Errorf("expected 1 ok tool call, got %v", got)
	}
	if got := testutil.ToFloat64(p.toolCalls.WithLabelValues("unknown", "error")); got != 1 {
		t.Errorf("expected 1 failed tool call, got %v", got)
	}
	if n := testutil.CollectAndCount(p.toolDuration); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}
}

func TestNewPrometheus_SeparateRegistries(t *testing.T) {
	NewPrometheus(prometheus.NewRegistry())
	NewPrometheus(prometheus.NewRegistry())
}
