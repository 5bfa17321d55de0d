package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingProvider(t *testing.T) (*Provider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewWithTracerProvider(tp, nil), recorder
}

func attrValue(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestOTelSinkRecordsGenerationUnderTrace(t *testing.T) {
	provider, recorder := newRecordingProvider(t)
	sink := provider.Sink()

	ctx, end := sink.StartTrace(context.Background(), "categorize_batch", map[string]any{"batch_size": 5})
	sink.Emit(ctx, Event{
		Name:   "ollama_batch_categorization",
		Kind:   KindGeneration,
		Model:  "llama3.1:8b",
		Input:  "prompt",
		Output: "Row 0: Other",
		Usage:  &Usage{PromptTokens: 120, CompletionTokens: 8},
	})
	end()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	child, root := spans[0], spans[1]
	assert.Equal(t, "ollama_batch_categorization", child.Name())
	assert.Equal(t, "categorize_batch", root.Name())
	assert.Equal(t, root.SpanContext().SpanID(), child.Parent().SpanID())

	v, ok := attrValue(child, attrModel)
	require.True(t, ok)
	assert.Equal(t, "llama3.1:8b", v.AsString())

	v, ok = attrValue(child, attrInputTokens)
	require.True(t, ok)
	assert.Equal(t, int64(120), v.AsInt64())

	v, ok = attrValue(child, attrMetadataPrefix+"input_length")
	require.True(t, ok)
	assert.Equal(t, int64(6), v.AsInt64())

	v, ok = attrValue(root, attrTraceMetaPrefix+"batch_size")
	require.True(t, ok)
	assert.Equal(t, int64(5), v.AsInt64())
}

func TestOTelSinkRecordsErrors(t *testing.T) {
	provider, recorder := newRecordingProvider(t)
	sink := provider.Sink()

	sink.Emit(context.Background(), Event{Name: "ollama_call", Err: errors.New("connection refused")})

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "connection refused", spans[0].Status().Description)
}

func TestProviderDisabled(t *testing.T) {
	provider, err := New(context.Background(), Config{Enabled: false}, nil)
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	_, ok := provider.Sink().(NopSink)
	assert.True(t, ok)
	provider.Shutdown(context.Background())
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.PublicKey = "pk-lf-123"
	require.NoError(t, cfg.Validate())

	cfg.Endpoint = " "
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}
