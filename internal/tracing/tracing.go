// Package tracing wires OpenTelemetry for the service and provides the span
// helpers used around key-value writes and classifier calls.
package tracing

import (
	"context"
	"os"

	"github.com/go-logr/zerologr"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "tangled.org/pulse.social/pulse"

// Options configures the exporter. Zero values fall back to defaults.
type Options struct {
	// Endpoint is the OTLP/HTTP collector host:port. Defaults to
	// OTEL_EXPORTER_OTLP_ENDPOINT, then localhost:4318.
	Endpoint string
	// ServiceName defaults to "pulse".
	ServiceName string
	// SampleRatio is the fraction of root traces kept. 0 keeps everything.
	SampleRatio float64
}

func (o Options) withDefaults() Options {
	if o.Endpoint == "" {
		o.Endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if o.Endpoint == "" {
		o.Endpoint = "localhost:4318"
	}
	if o.ServiceName == "" {
		o.ServiceName = "pulse"
	}
	if o.SampleRatio <= 0 || o.SampleRatio > 1 {
		o.SampleRatio = 1
	}
	return o
}

// Init installs a global tracer provider exporting over OTLP/HTTP and returns
// it so the caller can Shutdown on exit.
func Init(ctx context.Context, opts Options) (*sdktrace.TracerProvider, error) {
	opts = opts.withDefaults()
	otel.SetLogger(zerologr.New(&log.Logger))

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(opts.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("endpoint", opts.Endpoint).
		Float64("sample_ratio", opts.SampleRatio).
		Msg("tracing: exporter configured")
	return tp, nil
}

// The global provider is resolved on every call so spans started before Init
// are no-ops and spans after it are exported.
func start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// StoreSpan starts a span for one key-value write.
func StoreSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return start(ctx, "kv."+operation,
		attribute.String("kv.operation", operation),
		attribute.String("kv.key", key),
	)
}

// ClassifierSpan starts a span for classifying one post.
func ClassifierSpan(ctx context.Context, postID string) (context.Context, trace.Span) {
	return start(ctx, "classifier.classify", attribute.String("post.id", postID))
}

// Finish marks span as failed when err is non-nil and ends it.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
