package cinesnap

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/darkostanimirovic/cinesnap/catalog"
	"github.com/darkostanimirovic/cinesnap/internal/testutil"
	"github.com/darkostanimirovic/cinesnap/providers"
)

func newRecordingTracer(t *testing.T) (*OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewOTelTracerWithProvider(tp), recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOTelTracer_TurnSpans(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)
	cat := &testutil.Catalog{
		ListFunc: func(context.Context, catalog.Category, int) (*catalog.Page, error) {
			return testutil.PageOf(testutil.Movies(1, 2)), nil
		},
	}
	llm := NewMockLLM().
		WithToolCall("getPopularMovies", map[string]any{}).
		WithFinalResponse("Two popular picks.")
	a := newTestAssistant(t, llm, cat, func(c *Config) {
		c.Tracer = tracer
		c.SessionID = "trace-session"
	})

	_, err := a.HandleTurn(context.Background(), "popular please", nil)
	testutil.AssertNoError(t, err)

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range recorder.Ended() {
		byName[span.Name()] = span
	}
	for _, name := range []string{"turn", "model_call_1", "tool.getPopularMovies", "model_call_2"} {
		if _, ok := byName[name]; !ok {
			t.Fatalf("missing span %q, got %v", name, byName)
		}
	}

	root := byName["turn"]
	if v, _ := spanAttr(root, "session.id"); v.AsString() != "trace-session" {
		t.Errorf("expected session.id on the turn span, got %q", v.AsString())
	}
	rootID := root.SpanContext().SpanID()
	for _, name := range []string{"model_call_1", "tool.getPopularMovies", "model_call_2"} {
		if byName[name].Parent().SpanID() != rootID {
			t.Errorf("%s is not a child of the turn span", name)
		}
	}

	gen := byName["model_call_1"]
	if v, _ := spanAttr(gen, "gen_ai.request.model"); v.AsString() != defaultModel {
		t.Errorf("expected model attribute, got %q", v.AsString())
	}
	if v, _ := spanAttr(gen, "gen_ai.usage.total_tokens"); v.AsInt64() != 30 {
		t.Errorf("expected 30 total tokens, got %d", v.AsInt64())
	}
	if v, _ := spanAttr(byName["tool.getPopularMovies"], "cinesnap.metadata.movies"); v.AsString() != "2" {
		t.Errorf("expected movie count metadata, got %q", v.AsString())
	}
}

func TestOTelTracer_FailedGenerationSetsErrorStatus(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)
	llm := NewMockLLM().WithError(providers.ErrServerError).WithError(providers.ErrServerError)
	a := newTestAssistant(t, llm, &testutil.Catalog{}, func(c *Config) { c.Tracer = tracer })

	_, err := a.HandleTurn(context.Background(), "hi", nil)
	testutil.AssertNoError(t, err)

	for _, span := range recorder.Ended() {
		if span.Name() == "model_call_1" {
			if span.Status().Code != codes.Error {
				t.Errorf("expected error status, got %v", span.Status())
			}
			return
		}
	}
	t.Fatal("missing model_call_1 span")
}

func TestNewOTelTracer_RequiresEndpoint(t *testing.T) {
	if _, err := NewOTelTracer(context.Background(), OTelConfig{}); err == nil {
		t.Error("expected an error without an endpoint")
	}
}
