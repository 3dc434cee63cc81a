package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Recorder receives per-turn measurements from the chat service.
type Recorder interface {
	RecordTurn(ctx context.Context, intent, outcome string)
	RecordTurnDuration(ctx context.Context, duration time.Duration, intent string)
}

type Observability struct {
	meterProvider *metric.MeterProvider
	turnCounter   otelmetric.Int64Counter
	turnDuration  otelmetric.Float64Histogram
}

// New registers an otel meter provider backed by the Prometheus exporter.
// Call it once per process.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	turnCounter, _ := meter.Int64Counter(
		"chat.turns",
		otelmetric.WithDescription("Number of chat turns handled"),
	)
	turnDuration, _ := meter.Float64Histogram(
		"chat.turn.duration",
		otelmetric.WithDescription("Chat turn processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		turnCounter:   turnCounter,
		turnDuration:  turnDuration,
	}
}

func (o *Observability) RecordTurn(ctx context.Context, intent, outcome string) {
	if o.turnCounter != nil {
		o.turnCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordTurnDuration(ctx context.Context, duration time.Duration, intent string) {
	if o.turnDuration != nil {
		o.turnDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("intent", intent),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordTurn(context.Context, string, string)                {}
func (Nop) RecordTurnDuration(context.Context, time.Duration, string) {}
