// Package telemetry carries observability events out of the categorization
// pipeline. Events go to a Sink; the default sink drops them. Sink failures
// never reach the caller.
package telemetry

import (
	"context"
	"log/slog"
)

// EventKind distinguishes model calls from other pipeline steps.
type EventKind string

// Event kinds.
const (
	KindSpan       EventKind = "span"
	KindGeneration EventKind = "generation"
)

// Usage holds token counts reported by the model backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Event is one named step of a categorization trace.
type Event struct {
	Err      error
	Usage    *Usage
	Metadata map[string]any
	Name     string
	Kind     EventKind
	Model    string
	Input    string
	Output   string
}

// Sink receives trace events. Implementations must be safe for use by one
// goroutine at a time; the pipeline never emits concurrently.
type Sink interface {
	// StartTrace opens a trace for one operation. Events emitted with the
	// returned context belong to it. The returned func closes the trace.
	StartTrace(ctx context.Context, name string, metadata map[string]any) (context.Context, func())
	Emit(ctx context.Context, event Event)
}

// NopSink discards everything.
type NopSink struct{}

// StartTrace returns ctx unchanged.
func (NopSink) StartTrace(ctx context.Context, _ string, _ map[string]any) (context.Context, func()) {
	return ctx, func() {}
}

// Emit does nothing.
func (NopSink) Emit(context.Context, Event) {}

// Safe wraps sink so that payloads are truncated and panics are recovered
// and logged. A nil sink becomes a NopSink.
func Safe(sink Sink, logger *slog.Logger) Sink {
	if sink == nil {
		return NopSink{}
	}
	if _, ok := sink.(NopSink); ok {
		return sink
	}
	if s, ok := sink.(*safeSink); ok {
		return s
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &safeSink{next: sink, logger: logger}
}

type safeSink struct {
	next   Sink
	logger *slog.Logger
}

func (s *safeSink) StartTrace(ctx context.Context, name string, metadata map[string]any) (traceCtx context.Context, end func()) {
	traceCtx, end = ctx, func() {}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("telemetry sink failed to start trace", "trace", name, "panic", r)
			traceCtx, end = ctx, func() {}
		}
	}()

	tctx, tend := s.next.StartTrace(ctx, name, metadata)
	if tctx == nil {
		tctx = ctx
	}
	return tctx, func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Warn("telemetry sink failed to end trace", "trace", name, "panic", r)
			}
		}()
		if tend != nil {
			tend()
		}
	}
}

func (s *safeSink) Emit(ctx context.Context, event Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("telemetry sink failed to emit event", "event", event.Name, "panic", r)
		}
	}()
	s.next.Emit(ctx, prepare(event))
}
