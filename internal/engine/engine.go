// Package engine drives bulk categorization of unmapped rows.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/Veraticus/budget-mapper/internal/telemetry"
)

// DefaultBatchSize is how many rows share one model call.
const DefaultBatchSize = 5

// IndexedRow is an unmapped row and its caller-assigned index.
type IndexedRow struct {
	Data  model.Row
	Index int
}

// BulkResult holds the outcome of one RunBulk call. UnmappedCount counts
// input rows still without a suggestion, including rows never processed.
type BulkResult struct {
	Mappings       map[int]model.RowOutcome
	RunID          uuid.UUID
	UnmappedCount  int
	ProcessedCount int
	SuccessCount   int
	BatchCount     int
	Duration       time.Duration
	Canceled       bool
}

// FailedCount is the number of processed rows without a suggestion.
func (r *BulkResult) FailedCount() int {
	return r.ProcessedCount - r.SuccessCount
}

// Config holds configuration options for the orchestrator.
type Config struct {
	BatchSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize}
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithProgress registers a callback invoked after every batch.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator splits rows into batches and runs them through a
// BatchSuggester one batch at a time. It never persists anything.
type Orchestrator struct {
	suggester BatchSuggester
	progress  ProgressFunc
	metrics   *telemetry.Metrics
	logger    *slog.Logger
	batchSize int
}

// New creates an orchestrator.
func New(suggester BatchSuggester, cfg Config, opts ...Option) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	o := &Orchestrator{
		suggester: suggester,
		batchSize: cfg.BatchSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// RunBulk suggests categories for rows in input order. Every successful
// suggestion is appended to a run-local copy of history so later batches
// see it. The caller's categories and history are not modified.
//
// The only error returned is the context error when ctx is canceled
// between batches; the result then holds everything processed so far.
func (o *Orchestrator) RunBulk(ctx context.Context, rows []IndexedRow, categories []string, history model.History) (*BulkResult, error) {
	start := time.Now()
	result := &BulkResult{
		RunID:    uuid.New(),
		Mappings: make(map[int]model.RowOutcome, len(rows)),
	}
	if len(rows) == 0 {
		return result, nil
	}

	snapshot := append([]string(nil), categories...)
	runHistory := append(model.History(nil), history...)
	batches := o.partition(rows)

	o.logger.Info("starting bulk categorization",
		"run_id", result.RunID,
		"rows", len(rows),
		"batches", len(batches),
		"batch_size", o.batchSize)

	for i, batch := range batches {
		select {
		case <-ctx.Done():
			result.Canceled = true
			result.UnmappedCount = len(rows) - result.SuccessCount
			result.Duration = time.Since(start)
			o.logger.Warn("bulk categorization canceled",
				"run_id", result.RunID,
				"processed", result.ProcessedCount,
				"remaining", len(rows)-result.ProcessedCount)
			return result, fmt.Errorf("bulk run canceled after %d of %d rows: %w",
				result.ProcessedCount, len(rows), ctx.Err())
		default:
		}

		items := make(model.Batch, len(batch))
		for j, row := range batch {
			items[j] = model.BatchItem{Index: row.Index, Transaction: row.Data.Transaction()}
		}

		suggestions := o.suggester.SuggestBatch(ctx, items, snapshot, runHistory)
		o.metrics.RecordBatch(ctx, len(batch))

		for j, row := range batch {
			suggestion, ok := suggestions[row.Index]
			if !ok {
				suggestion = model.Failed(model.KindMissingSuggestion, "")
			}
			result.Mappings[row.Index] = model.OutcomeFor(row.Data, suggestion)
			if suggestion.Success {
				result.SuccessCount++
				runHistory = append(runHistory, model.ExampleFor(items[j].Transaction, suggestion.Category))
			}
		}

		result.ProcessedCount += len(batch)
		result.BatchCount++
		o.logger.Debug("batch complete",
			"run_id", result.RunID,
			"batch", i+1,
			"of", len(batches),
			"processed", result.ProcessedCount)

		if o.progress != nil {
			o.progress(result.ProcessedCount, len(rows))
		}
	}

	result.UnmappedCount = len(rows) - result.SuccessCount
	result.Duration = time.Since(start)
	o.logger.Info("bulk categorization complete",
		"run_id", result.RunID,
		"processed", result.ProcessedCount,
		"suggested", result.SuccessCount,
		"failed", result.FailedCount(),
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

// partition splits rows into consecutive groups of at most batchSize.
func (o *Orchestrator) partition(rows []IndexedRow) [][]IndexedRow {
	batches := make([][]IndexedRow, 0, (len(rows)+o.batchSize-1)/o.batchSize)
	for start := 0; start < len(rows); start += o.batchSize {
		end := min(start+o.batchSize, len(rows))
		batches = append(batches, rows[start:end])
	}
	return batches
}
