// Package tracing provides opt-in OpenTelemetry tracing. Tracing is enabled
// only when an OTLP endpoint is configured; otherwise [Init] leaves the
// global tracer provider alone and returns a no-op shutdown function.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type ExporterOptions struct {
	TracingEndpoint    string `doc:"OTLP/HTTP endpoint URL receiving traces, tracing is off when empty"`
	TracingServiceName string `doc:"service name reported in traces"                                    default:"phonebook"`
}

// Init configures the global OpenTelemetry tracer provider with an OTLP HTTP
// exporter. The returned function flushes pending spans and should be called
// on shutdown.
func Init(ctx context.Context, options *ExporterOptions) (shutdown func(context.Context) error, err error) {
	endpoint := strings.TrimSpace(options.TracingEndpoint)
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	serviceName := strings.TrimSpace(options.TracingServiceName)
	if serviceName == "" {
		serviceName = "phonebook"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
