package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/echoscribe/echoscribe/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceVersion)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the transcription pipeline's metric instruments. A nil
// *Metrics disables recording.
type Metrics struct {
	runTotal    metric.Int64Counter
	runDuration metric.Float64Histogram
	pieceTotal  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	runTotal, err := meter.Int64Counter("transcription.runs.total",
		metric.WithDescription("Total number of transcription runs"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.runs.total counter: %w", err)
	}

	runDuration, err := meter.Float64Histogram("transcription.run.duration",
		metric.WithDescription("Duration of transcription runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.run.duration histogram: %w", err)
	}

	pieceTotal, err := meter.Int64Counter("transcription.pieces.total",
		metric.WithDescription("Total number of transcribed pieces"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating transcription.pieces.total counter: %w", err)
	}

	return &Metrics{
		runTotal:    runTotal,
		runDuration: runDuration,
		pieceTotal:  pieceTotal,
	}, nil
}

// RecordRun records one finished transcription run.
func (m *Metrics) RecordRun(ctx context.Context, status string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.runTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordPiece records one attempted piece.
func (m *Metrics) RecordPiece(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.pieceTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
