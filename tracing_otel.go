package cinesnap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/darkostanimirovic/cinesnap"

// OTelConfig configures OTLP/HTTP span export.
type OTelConfig struct {
	// Endpoint is the collector URL, e.g. "http://localhost:4318".
	Endpoint string
	// URLPath overrides the default "/v1/traces" path.
	URLPath string
	// Headers are sent with every export request.
	Headers map[string]string

	ServiceName    string
	ServiceVersion string
	Environment    string
}

// OTelTracer implements Tracer on the OpenTelemetry SDK.
type OTelTracer struct {
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
}

// NewOTelTracer creates a tracer that batches spans to an OTLP/HTTP collector.
func NewOTelTracer(ctx context.Context, cfg OTelConfig) (*OTelTracer, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("cinesnap: OTLP endpoint is required")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cinesnap"
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(strings.TrimRight(endpoint, "/"))}
	if cfg.URLPath != "" {
		opts = append(opts, otlptracehttp.WithURLPath(cfg.URLPath))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(cfg.Headers))
	}
	if strings.HasPrefix(cfg.Endpoint, "http://") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res := resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	)

	return NewOTelTracerWithProvider(sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)), nil
}

// NewOTelTracerWithProvider wraps an existing tracer provider.
func NewOTelTracerWithProvider(tp *sdktrace.TracerProvider) *OTelTracer {
	return &OTelTracer{
		tracer:         tp.Tracer(tracerName),
		tracerProvider: tp,
	}
}

// StartTrace creates the root span of a turn.
func (o *OTelTracer) StartTrace(ctx context.Context, name string, opts ...TraceOption) (context.Context, func()) {
	cfg := &TraceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	spanCtx, span := o.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
	if cfg.SessionID != "" {
		span.SetAttributes(attribute.String("session.id", cfg.SessionID))
	}
	if len(cfg.Tags) > 0 {
		span.SetAttributes(attribute.StringSlice("cinesnap.tags", cfg.Tags))
	}
	if cfg.Input != nil {
		span.SetAttributes(attribute.String("cinesnap.input", toJSON(cfg.Input)))
	}

	return spanCtx, func() { span.End() }
}

// StartSpan creates a child span.
func (o *OTelTracer) StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, func()) {
	cfg := &SpanConfig{Type: SpanTypeSpan, Level: LogLevelDefault}
	for _, opt := range opts {
		opt(cfg)
	}

	spanCtx, span := o.tracer.Start(ctx, name)
	span.SetAttributes(
		attribute.String("cinesnap.observation.type", string(cfg.Type)),
		attribute.String("cinesnap.observation.level", string(cfg.Level)),
	)
	if cfg.Input != nil {
		span.SetAttributes(attribute.String("cinesnap.observation.input", toJSON(cfg.Input)))
	}

	return spanCtx, func() { span.End() }
}

// LogGeneration records a model call as a span with gen_ai attributes.
func (o *OTelTracer) LogGeneration(ctx context.Context, opts GenerationOptions) error {
	start := opts.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	end := opts.EndTime
	if end.IsZero() {
		end = time.Now()
	}

	_, span := o.tracer.Start(ctx, opts.Name, trace.WithTimestamp(start))
	defer span.End(trace.WithTimestamp(end))

	span.SetAttributes(attribute.String("cinesnap.observation.type", string(SpanTypeGeneration)))
	if opts.Model != "" {
		span.SetAttributes(attribute.String("gen_ai.request.model", opts.Model))
	}
	if opts.ModelParameters != nil {
		span.SetAttributes(attribute.String("gen_ai.request.parameters", toJSON(opts.ModelParameters)))
	}
	if opts.Input != nil {
		span.SetAttributes(attribute.String("gen_ai.prompt", toJSON(opts.Input)))
	}
	if opts.Output != nil {
		span.SetAttributes(attribute.String("gen_ai.completion", toJSON(opts.Output)))
	}
	if opts.Usage != nil {
		span.SetAttributes(
			attribute.Int("gen_ai.usage.input_tokens", opts.Usage.PromptTokens),
			attribute.Int("gen_ai.usage.output_tokens", opts.Usage.CompletionTokens),
			attribute.Int("gen_ai.usage.total_tokens", opts.Usage.TotalTokens),
		)
	}
	if opts.StatusMessage != "" {
		span.SetAttributes(attribute.String("cinesnap.observation.status_message", opts.StatusMessage))
		if opts.Level == LogLevelError {
			span.SetStatus(codes.Error, opts.StatusMessage)
		}
	}
	return nil
}

// SetSpanOutput sets the output on the current span.
func (o *OTelTracer) SetSpanOutput(ctx context.Context, output any) error {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || output == nil {
		return nil
	}
	span.SetAttributes(attribute.String("cinesnap.observation.output", toJSON(output)))
	return nil
}

// SetSpanAttributes attaches metadata to the current span.
func (o *OTelTracer) SetSpanAttributes(ctx context.Context, attributes map[string]any) error {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}
	for k, v := range attributes {
		span.SetAttributes(attribute.String("cinesnap.metadata."+k, toJSON(v)))
	}
	return nil
}

// Flush exports pending spans.
func (o *OTelTracer) Flush(ctx context.Context) error {
	return o.tracerProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops the tracer provider.
func (o *OTelTracer) Shutdown(ctx context.Context) error {
	return o.tracerProvider.Shutdown(ctx)
}

func toJSON(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
