package telemetry

import (
	"context"
	"fmt"
	"log/slog"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Summary is an in-process rollup of the run metrics.
type Summary struct {
	Outcomes       map[string]int64
	BackendCalls   uint64
	BackendFailed  uint64
	BackendSeconds float64
	Batches        int64
}

// Collector records Metrics into an in-memory reader so a command can
// report totals when it finishes.
type Collector struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
	metrics  *Metrics
}

// NewCollector creates a collector with its own meter provider.
func NewCollector(logger *slog.Logger) *Collector {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return &Collector{
		reader:   reader,
		provider: provider,
		metrics:  NewMetrics(provider.Meter(instrumentationName), logger),
	}
}

// Metrics returns the recorder to hand to the pipeline.
func (c *Collector) Metrics() *Metrics {
	return c.metrics
}

// Summary collects everything recorded so far.
func (c *Collector) Summary(ctx context.Context) (Summary, error) {
	summary := Summary{Outcomes: make(map[string]int64)}

	var rm metricdata.ResourceMetrics
	if err := c.reader.Collect(ctx, &rm); err != nil {
		return summary, fmt.Errorf("failed to collect metrics: %w", err)
	}

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					switch m.Name {
					case "budget.suggestions_total":
						outcome, _ := dp.Attributes.Value("outcome")
						summary.Outcomes[outcome.AsString()] += dp.Value
					case "budget.batches_total":
						summary.Batches += dp.Value
					}
				}
			case metricdata.Histogram[float64]:
				if m.Name != "budget.backend_duration_seconds" {
					continue
				}
				for _, dp := range data.DataPoints {
					summary.BackendCalls += dp.Count
					summary.BackendSeconds += dp.Sum
					if failed, ok := dp.Attributes.Value("failed"); ok && failed.AsBool() {
						summary.BackendFailed += dp.Count
					}
				}
			}
		}
	}
	return summary, nil
}

// Shutdown releases the meter provider.
func (c *Collector) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}
