package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/budget-mapper/internal/categories"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/Veraticus/budget-mapper/internal/telemetry"
)

// Defaults for backend calls.
const (
	DefaultModel         = "llama3.1:8b"
	DefaultTemperature   = 0.3
	DefaultSingleTimeout = 30 * time.Second
	DefaultBatchTimeout  = 60 * time.Second
)

const (
	modeSingle = "single"
	modeBatch  = "batch"
)

// Config holds configuration for the suggester.
type Config struct {
	Model         string
	Temperature   float64
	SingleTimeout time.Duration
	BatchTimeout  time.Duration
	HistoryWindow int
	RateLimit     int // backend calls per minute, 0 = unlimited
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		Model:         DefaultModel,
		Temperature:   DefaultTemperature,
		SingleTimeout: DefaultSingleTimeout,
		BatchTimeout:  DefaultBatchTimeout,
		HistoryWindow: DefaultHistoryWindow,
	}
}

// Option customizes a Suggester.
type Option func(*Suggester)

// WithSink sets the observability sink. Nil keeps the no-op sink.
func WithSink(sink telemetry.Sink) Option {
	return func(s *Suggester) { s.sink = sink }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Suggester) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suggester) { s.logger = logger }
}

// Suggester asks the model backend for categories and validates the answers.
// It never returns errors: every failure is reported as a SuggestionResult.
// No retries are attempted.
type Suggester struct {
	backend     Backend
	sink        telemetry.Sink
	prompts     *PromptBuilder
	metrics     *telemetry.Metrics
	logger      *slog.Logger
	rateLimiter *rateLimiter
	cfg         Config
}

// NewSuggester creates a suggester. Zero config fields take their defaults,
// except Temperature: zero is a valid sampling temperature and is sent as is.
func NewSuggester(backend Backend, cfg Config, opts ...Option) *Suggester {
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.SingleTimeout <= 0 {
		cfg.SingleTimeout = defaults.SingleTimeout
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaults.BatchTimeout
	}

	s := &Suggester{
		backend:     backend,
		cfg:         cfg,
		prompts:     NewPromptBuilder(cfg.HistoryWindow),
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.sink = telemetry.Safe(s.sink, s.logger)
	return s
}

// Suggest categorizes a single transaction.
func (s *Suggester) Suggest(ctx context.Context, txn model.Transaction, cats []string, history model.History) model.SuggestionResult {
	ctx, end := s.sink.StartTrace(ctx, "categorize_transaction", map[string]any{
		"category_count": len(cats),
		"history_count":  len(history),
	})
	defer end()

	prompt := s.prompts.BuildSingle(txn, cats, history)
	s.sink.Emit(ctx, telemetry.Event{
		Name:     "prompt_built",
		Input:    txn.Description,
		Output:   prompt,
		Metadata: map[string]any{"mode": modeSingle},
	})

	resp, err := s.generate(ctx, "ollama_categorization", modeSingle, prompt, s.cfg.SingleTimeout)
	if err != nil {
		result := failureFor(err)
		s.logger.Warn("single categorization failed",
			"description", txn.Description,
			"kind", result.Kind,
			"error", err)
		s.metrics.RecordSuggestion(ctx, modeSingle, string(result.Kind))
		return result
	}

	raw := cleanSuggestion(resp.Response)
	category, ok := categories.Match(cats, raw)
	validation := map[string]any{"valid": ok, "mode": modeSingle}
	if !ok {
		if closest, found := categories.Closest(cats, raw); found {
			validation["closest"] = closest
		}
	}
	s.sink.Emit(ctx, telemetry.Event{
		Name:     "category_validation",
		Input:    raw,
		Output:   category,
		Metadata: validation,
	})

	if !ok {
		s.logger.Warn("model suggested unknown category",
			"description", txn.Description,
			"suggestion", raw,
			"closest", validation["closest"])
		s.metrics.RecordSuggestion(ctx, modeSingle, string(model.KindInvalidCategory))
		return model.Failed(model.KindInvalidCategory, raw)
	}

	s.logger.Debug("transaction categorized",
		"description", txn.Description,
		"category", category)
	s.metrics.RecordSuggestion(ctx, modeSingle, "")
	return model.Suggested(category)
}

// SuggestBatch categorizes a batch with a single backend call. Every row
// index in batch gets an entry in the returned map.
func (s *Suggester) SuggestBatch(ctx context.Context, batch model.Batch, cats []string, history model.History) map[int]model.SuggestionResult {
	results := make(map[int]model.SuggestionResult, len(batch))
	if len(batch) == 0 {
		return results
	}

	ctx, end := s.sink.StartTrace(ctx, "categorize_batch", map[string]any{
		"batch_size":     len(batch),
		"row_indices":    batch.Indices(),
		"category_count": len(cats),
		"history_count":  len(history),
	})
	defer end()

	prompt := s.prompts.BuildBatch(batch, cats, history)
	s.sink.Emit(ctx, telemetry.Event{
		Name:     "batch_prompt_built",
		Output:   prompt,
		Metadata: map[string]any{"mode": modeBatch, "batch_size": len(batch)},
	})

	resp, err := s.generate(ctx, "ollama_batch_categorization", modeBatch, prompt, s.cfg.BatchTimeout)
	if err != nil {
		failure := failureFor(err)
		s.logger.Warn("batch categorization failed",
			"rows", batch.Indices(),
			"kind", failure.Kind,
			"error", err)
		for _, item := range batch {
			results[item.Index] = failure
			s.metrics.RecordSuggestion(ctx, modeBatch, string(failure.Kind))
		}
		return results
	}

	discarded := make(map[int]string)
	lines := ParseBatchResponse(resp.Response)
	for _, line := range lines {
		if !batch.Contains(line.Index) {
			s.logger.Debug("ignoring suggestion for row outside batch", "row", line.Index)
			continue
		}
		if _, done := results[line.Index]; done {
			continue
		}
		category, ok := categories.Match(cats, line.Category)
		if !ok {
			discarded[line.Index] = line.Category
			continue
		}
		results[line.Index] = model.Suggested(category)
	}

	var missing []int
	for _, item := range batch {
		if _, ok := results[item.Index]; ok {
			s.metrics.RecordSuggestion(ctx, modeBatch, "")
			continue
		}
		results[item.Index] = model.Failed(model.KindMissingSuggestion, discarded[item.Index])
		missing = append(missing, item.Index)
		s.metrics.RecordSuggestion(ctx, modeBatch, string(model.KindMissingSuggestion))
	}

	s.sink.Emit(ctx, telemetry.Event{
		Name:   "batch_parse",
		Input:  resp.Response,
		Output: fmt.Sprintf("%d of %d rows categorized", len(batch)-len(missing), len(batch)),
		Metadata: map[string]any{
			"parsed_lines":    len(lines),
			"missing_rows":    missing,
			"discarded_count": len(discarded),
		},
	})

	if len(missing) > 0 {
		s.logger.Warn("batch response missing rows",
			"rows", batch.Indices(),
			"missing", missing,
			"discarded", discarded)
	} else {
		s.logger.Debug("batch categorized", "rows", batch.Indices())
	}

	return results
}

// generate performs one rate-limited backend call and reports it to the sink.
func (s *Suggester) generate(ctx context.Context, eventName, mode, prompt string, timeout time.Duration) (GenerateResponse, error) {
	if err := s.rateLimiter.wait(ctx); err != nil {
		return GenerateResponse{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.backend.Generate(callCtx, GenerateRequest{
		Model:       s.cfg.Model,
		Prompt:      prompt,
		Temperature: s.cfg.Temperature,
		Timeout:     timeout,
		Stream:      false,
	})
	elapsed := time.Since(start)

	s.metrics.RecordBackendCall(ctx, mode, elapsed, err != nil)

	event := telemetry.Event{
		Name:  eventName,
		Kind:  telemetry.KindGeneration,
		Model: s.cfg.Model,
		Input: prompt,
		Err:   err,
		Metadata: map[string]any{
			"mode":        mode,
			"duration_ms": elapsed.Milliseconds(),
			"temperature": s.cfg.Temperature,
		},
	}
	if err == nil {
		event.Output = resp.Response
		if resp.PromptEvalCount > 0 || resp.EvalCount > 0 {
			event.Usage = &telemetry.Usage{
				PromptTokens:     resp.PromptEvalCount,
				CompletionTokens: resp.EvalCount,
			}
		}
	}
	s.sink.Emit(ctx, event)

	return resp, err
}

// failureFor maps a backend error onto the suggestion error taxonomy.
func failureFor(err error) model.SuggestionResult {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return model.Failed(model.KindBackendError, fmt.Sprintf("status %d", statusErr.StatusCode))
	case errors.Is(err, ErrUnreachable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return model.Failed(model.KindUnreachable, err.Error())
	default:
		return model.Failed(model.KindBackendError, err.Error())
	}
}
