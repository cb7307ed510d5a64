package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds tracing configuration
type Config struct {
	ServiceName string
	JaegerURL   string
	SampleRate  float64
	Enabled     bool
}

// DefaultConfig returns default tracing configuration
func DefaultConfig() Config {
	return Config{
		ServiceName: "paystream",
		JaegerURL:   "http://localhost:14268/api/traces",
		SampleRate:  1.0,
		Enabled:     true,
	}
}

var tracerProvider *sdktrace.TracerProvider

// Init initializes the tracing system
func Init(cfg Config) error {
	if !cfg.Enabled {
		return nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerURL)))
	if err != nil {
		return fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tracerProvider)
	return nil
}

// Shutdown gracefully shuts down the tracing system
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

// StartSpan starts a new span with the given name and options
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tracer := otel.Tracer("paystream")
	return tracer.Start(ctx, name, opts...)
}

// SpanFromContext returns the current span from context
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanAttributes adds attributes to the current span
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attrs...)
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanStatus sets the status of the current span
func SetSpanStatus(ctx context.Context, code codes.Code, description string) {
	span := trace.SpanFromContext(ctx)
	span.SetStatus(code, description)
}

// Common attribute keys
const (
	StreamIDKey  = "stream.id"
	CallerKey    = "stream.caller"
	TokenKey     = "stream.token"
	AmountKey    = "stream.amount"
	OperationKey = "operation"
	ComponentKey = "component"
)

// TraceStreamOperation creates a span for a stream lifecycle operation
func TraceStreamOperation(ctx context.Context, operation string, streamID uint64) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("stream.%s", operation),
		trace.WithAttributes(
			attribute.String(OperationKey, operation),
			attribute.Int64(StreamIDKey, int64(streamID)),
			attribute.String(ComponentKey, "engine"),
		),
	)
}

// TraceLedgerTransfer creates a span for a token ledger transfer
func TraceLedgerTransfer(ctx context.Context, token, from, to string, amount uint64) (context.Context, trace.Span) {
	return StartSpan(ctx, "ledger.transfer",
		trace.WithAttributes(
			attribute.String(TokenKey, token),
			attribute.String("transfer.from", from),
			attribute.String("transfer.to", to),
			attribute.Int64(AmountKey, int64(amount)),
			attribute.String(ComponentKey, "ledger"),
		),
	)
}

// TraceHTTPRequest creates a span for HTTP request processing
func TraceHTTPRequest(ctx context.Context, method, path string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("http.%s %s", method, path),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
			attribute.String(ComponentKey, "http"),
		),
	)
}

// TraceDatabaseOperation creates a span for database operations
func TraceDatabaseOperation(ctx context.Context, operation, collection string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("db.%s", operation),
		trace.WithAttributes(
			attribute.String("db.operation", operation),
			attribute.String("db.collection", collection),
			attribute.String(ComponentKey, "storage"),
		),
	)
}

// MeasureDuration measures the duration of an operation and adds it to the span
func MeasureDuration(ctx context.Context, start time.Time) {
	duration := time.Since(start)
	AddSpanAttributes(ctx, attribute.Int64("duration.ms", duration.Milliseconds()))
}
