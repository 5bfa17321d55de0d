package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/budget-mapper/internal/engine"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/Veraticus/budget-mapper/internal/telemetry"
)

func TestWriteStats(t *testing.T) {
	var out bytes.Buffer
	err := WriteStats(&out, &model.MappingStats{
		FileName:          "jan.csv",
		TotalRows:         4,
		MappedRows:        3,
		RemainingRows:     1,
		LastUpdated:       time.Now(),
		CategoryBreakdown: map[string]int{"Shopping": 1, "Utilities": 2},
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "jan.csv")
	assert.Contains(t, text, "Mapped: 3 of 4 (75%)")
	assert.Less(t, strings.Index(text, "Utilities"), strings.Index(text, "Shopping"))
}

func TestWriteStats_NothingImported(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteStats(&out, &model.MappingStats{}))
	assert.Contains(t, out.String(), "No file imported yet")
}

func TestWriteOutcomes(t *testing.T) {
	food := "Food & Groceries"
	rows := []engine.IndexedRow{
		{Index: 4, Data: model.Row{"Description": "WHOLE FOODS"}},
		{Index: 9, Data: model.Row{"Description": strings.Repeat("X", 60)}},
	}
	result := &engine.BulkResult{Mappings: map[int]model.RowOutcome{
		4: {Suggestion: &food},
		9: {Error: &model.SuggestionError{Kind: model.KindUnreachable}},
	}}

	var out bytes.Buffer
	require.NoError(t, WriteOutcomes(&out, rows, result))

	text := out.String()
	assert.Contains(t, text, "WHOLE FOODS")
	assert.Contains(t, text, food)
	assert.Contains(t, text, "model backend unreachable")
	assert.Contains(t, text, strings.Repeat("X", 39)+"…")
	assert.Less(t, strings.Index(text, "WHOLE FOODS"), strings.Index(text, "XXXX"))
}

func TestRenderBulkSummary(t *testing.T) {
	result := &engine.BulkResult{
		RunID:          uuid.New(),
		ProcessedCount: 10,
		SuccessCount:   8,
		UnmappedCount:  2,
		BatchCount:     2,
		Canceled:       true,
	}
	text := RenderBulkSummary(result, telemetry.Summary{BackendCalls: 2, BackendSeconds: 3}, 8)

	assert.Contains(t, text, "Interrupted")
	assert.Contains(t, text, "Rows processed: 10")
	assert.Contains(t, text, "Model calls: 2 (0 failed, avg 1.5s)")
	assert.Contains(t, text, "Saved as suggestions: 8")
}

func TestBulkProgress_Update(t *testing.T) {
	var out bytes.Buffer
	p := NewBulkProgress(&out, 12)

	p.Update(5, 12)
	p.Update(5, 12)
	p.Update(10, 12)
	p.Update(12, 12)

	assert.Equal(t, 12, p.Processed())
}
