package cinesnap

import (
	"context"
	"time"
)

// Tracer records turn, model and tool spans.
type Tracer interface {
	// StartTrace creates the root span for one turn.
	StartTrace(ctx context.Context, name string, opts ...TraceOption) (context.Context, func())

	// StartSpan creates a child span for a model or tool call.
	StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, func())

	// LogGeneration records a completed model call.
	LogGeneration(ctx context.Context, opts GenerationOptions) error

	// SetSpanOutput sets the output on the current span.
	SetSpanOutput(ctx context.Context, output any) error

	// SetSpanAttributes attaches metadata to the current span.
	SetSpanAttributes(ctx context.Context, attributes map[string]any) error

	// Flush sends pending spans.
	Flush(ctx context.Context) error
}

// TraceOption configures trace creation.
type TraceOption func(*TraceConfig)

// SpanOption configures span creation.
type SpanOption func(*SpanConfig)

// TraceConfig holds configuration for a trace.
type TraceConfig struct {
	SessionID string
	Tags      []string
	Input     any
}

// SpanConfig holds configuration for a span.
type SpanConfig struct {
	Type  SpanType
	Input any
	Level LogLevel
}

// SpanType represents the type of observation.
type SpanType string

const (
	SpanTypeSpan       SpanType = "span"
	SpanTypeGeneration SpanType = "generation"
	SpanTypeTool       SpanType = "tool"
)

// LogLevel represents the severity level of a span.
type LogLevel string

const (
	LogLevelDefault LogLevel = "DEFAULT"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// GenerationOptions holds data for one model call.
type GenerationOptions struct {
	Name            string
	Model           string
	ModelParameters map[string]any
	Input           any
	Output          any
	Usage           *UsageInfo
	StartTime       time.Time
	EndTime         time.Time
	Level           LogLevel
	StatusMessage   string
}

// UsageInfo tracks token consumption reported by the provider.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func WithSessionID(sessionID string) TraceOption {
	return func(c *TraceConfig) {
		c.SessionID = sessionID
	}
}

func WithTags(tags ...string) TraceOption {
	return func(c *TraceConfig) {
		c.Tags = append(c.Tags, tags...)
	}
}

func WithTraceInput(input any) TraceOption {
	return func(c *TraceConfig) {
		c.Input = input
	}
}

func WithSpanType(spanType SpanType) SpanOption {
	return func(c *SpanConfig) {
		c.Type = spanType
	}
}

func WithSpanInput(input any) SpanOption {
	return func(c *SpanConfig) {
		c.Input = input
	}
}

func WithLogLevel(level LogLevel) SpanOption {
	return func(c *SpanConfig) {
		c.Level = level
	}
}

// NoOpTracer is used when tracing is disabled.
type NoOpTracer struct{}

func (n *NoOpTracer) StartTrace(ctx context.Context, _ string, _ ...TraceOption) (context.Context, func()) {
	return ctx, func() {}
}

func (n *NoOpTracer) StartSpan(ctx context.Context, _ string, _ ...SpanOption) (context.Context, func()) {
	return ctx, func() {}
}

func (n *NoOpTracer) LogGeneration(context.Context, GenerationOptions) error { return nil }

func (n *NoOpTracer) SetSpanOutput(context.Context, any) error { return nil }

func (n *NoOpTracer) SetSpanAttributes(context.Context, map[string]any) error { return nil }

func (n *NoOpTracer) Flush(context.Context) error { return nil }
