// Package observability initializes OpenTelemetry tracing and metrics for
// echoscribe and exposes the domain instruments the pipeline records.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/echoscribe/echoscribe/logger"
)

const defaultTracerName = "github.com/echoscribe/echoscribe/observability"

// Config configures the OpenTelemetry exporters.
type Config struct {
	// Enabled turns trace and metric export on. Disabled by default, as
	// echoscribe is a local single-user tool.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// ServiceVersion is reported as the service version resource attribute.
	ServiceVersion string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// InitTracer initializes the OpenTelemetry tracer provider.
// Returns a TracerProvider that should be shut down on application exit.
func InitTracer(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.WithComponent("observability").Info("tracer initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))

	return tp, nil
}

func newResource(serviceVersion string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("echoscribe"),
			semconv.ServiceVersion(serviceVersion),
			attribute.String("environment", "local"),
		),
	)
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a new span using the default tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer(defaultTracerName).Start(ctx, name, opts...)
}
