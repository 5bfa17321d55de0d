package telemetry

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts suggestion outcomes and backend latency.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	suggestions    metric.Int64Counter
	backendLatency metric.Float64Histogram
	batches        metric.Int64Counter
}

// NewMetrics creates instruments on meter, or on the global meter provider
// when meter is nil. Instrument creation errors are logged and the affected
// instrument is skipped.
func NewMetrics(meter metric.Meter, logger *slog.Logger) *Metrics {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Metrics{}
	var err error

	m.suggestions, err = meter.Int64Counter(
		"budget.suggestions_total",
		metric.WithDescription("Category suggestions by mode and outcome."),
		metric.WithUnit("{suggestion}"),
	)
	if err != nil {
		logger.Warn("failed to create suggestions counter", "error", err)
	}

	m.backendLatency, err = meter.Float64Histogram(
		"budget.backend_duration_seconds",
		metric.WithDescription("Model backend call duration by mode."),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Warn("failed to create backend latency histogram", "error", err)
	}

	m.batches, err = meter.Int64Counter(
		"budget.batches_total",
		metric.WithDescription("Batches sent during bulk runs."),
		metric.WithUnit("{batch}"),
	)
	if err != nil {
		logger.Warn("failed to create batches counter", "error", err)
	}

	return m
}

// RecordSuggestion counts one per-row outcome. An empty outcome means success.
func (m *Metrics) RecordSuggestion(ctx context.Context, mode, outcome string) {
	if m == nil || m.suggestions == nil {
		return
	}
	if outcome == "" {
		outcome = "success"
	}
	m.suggestions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
}

// RecordBackendCall records how long a backend call took.
func (m *Metrics) RecordBackendCall(ctx context.Context, mode string, d time.Duration, failed bool) {
	if m == nil || m.backendLatency == nil {
		return
	}
	m.backendLatency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.Bool("failed", failed),
	))
}

// RecordBatch counts a processed batch.
func (m *Metrics) RecordBatch(ctx context.Context, size int) {
	if m == nil || m.batches == nil {
		return
	}
	m.batches.Add(ctx, 1, metric.WithAttributes(attribute.Int("size", size)))
}
