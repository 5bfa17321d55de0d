package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Attribute keys understood by Langfuse's OTLP ingestion.
const (
	attrObservationType   = "langfuse.observation.type"
	attrObservationInput  = "langfuse.observation.input"
	attrObservationOutput = "langfuse.observation.output"
	attrMetadataPrefix    = "langfuse.observation.metadata."
	attrTraceMetaPrefix   = "langfuse.trace.metadata."
	attrModel             = "gen_ai.request.model"
	attrInputTokens       = "gen_ai.usage.input_tokens"
	attrOutputTokens      = "gen_ai.usage.output_tokens"
)

// OTelSink turns traces into root spans and events into child spans.
type OTelSink struct {
	tracer oteltrace.Tracer
}

// NewOTelSink creates a sink that records spans with tracer.
func NewOTelSink(tracer oteltrace.Tracer) *OTelSink {
	return &OTelSink{tracer: tracer}
}

// StartTrace starts a span named name and returns a context carrying it.
func (s *OTelSink) StartTrace(ctx context.Context, name string, metadata map[string]any) (context.Context, func()) {
	ctx, span := s.tracer.Start(ctx, name,
		oteltrace.WithAttributes(metadataAttributes(attrTraceMetaPrefix, metadata)...))
	return ctx, func() { span.End() }
}

// Emit records event as a completed child span of the trace in ctx.
func (s *OTelSink) Emit(ctx context.Context, event Event) {
	kind := event.Kind
	if kind == "" {
		kind = KindSpan
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrObservationType, string(kind)),
	}
	if event.Input != "" {
		attrs = append(attrs, attribute.String(attrObservationInput, event.Input))
	}
	if event.Output != "" {
		attrs = append(attrs, attribute.String(attrObservationOutput, event.Output))
	}
	if event.Model != "" {
		attrs = append(attrs, attribute.String(attrModel, event.Model))
	}
	if event.Usage != nil {
		attrs = append(attrs,
			attribute.Int(attrInputTokens, event.Usage.PromptTokens),
			attribute.Int(attrOutputTokens, event.Usage.CompletionTokens))
	}
	attrs = append(attrs, metadataAttributes(attrMetadataPrefix, event.Metadata)...)

	_, span := s.tracer.Start(ctx, event.Name, oteltrace.WithAttributes(attrs...))
	if event.Err != nil {
		span.RecordError(event.Err)
		span.SetStatus(codes.Error, event.Err.Error())
	}
	span.End()
}

func metadataAttributes(prefix string, metadata map[string]any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(metadata))
	for k, v := range metadata {
		key := prefix + k
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(key, val))
		case int:
			attrs = append(attrs, attribute.Int(key, val))
		case int64:
			attrs = append(attrs, attribute.Int64(key, val))
		case float64:
			attrs = append(attrs, attribute.Float64(key, val))
		case bool:
			attrs = append(attrs, attribute.Bool(key, val))
		case []string:
			attrs = append(attrs, attribute.StringSlice(key, val))
		case []int:
			attrs = append(attrs, attribute.IntSlice(key, val))
		default:
			attrs = append(attrs, attribute.String(key, fmt.Sprint(val)))
		}
	}
	return attrs
}
