package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Summary(t *testing.T) {
	ctx := context.Background()
	c := NewCollector(nil)
	t.Cleanup(func() { _ = c.Shutdown(ctx) })

	m := c.Metrics()
	m.RecordSuggestion(ctx, "batch", "")
	m.RecordSuggestion(ctx, "batch", "")
	m.RecordSuggestion(ctx, "batch", "unreachable")
	m.RecordBackendCall(ctx, "batch", time.Second, false)
	m.RecordBackendCall(ctx, "batch", 500*time.Millisecond, true)
	m.RecordBatch(ctx, 5)
	m.RecordBatch(ctx, 2)

	summary, err := c.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"success": 2, "unreachable": 1}, summary.Outcomes)
	assert.Equal(t, uint64(2), summary.BackendCalls)
	assert.Equal(t, uint64(1), summary.BackendFailed)
	assert.InDelta(t, 1.5, summary.BackendSeconds, 1e-9)
	assert.Equal(t, int64(2), summary.Batches)
}

func TestCollector_Empty(t *testing.T) {
	ctx := context.Background()
	c := NewCollector(nil)
	t.Cleanup(func() { _ = c.Shutdown(ctx) })

	summary, err := c.Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary.Outcomes)
	assert.Zero(t, summary.BackendCalls)
}
