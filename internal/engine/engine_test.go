package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/Veraticus/budget-mapper/internal/llm"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategories = []string{"Food", "Transport", "Other"}

// promptRow matches one transaction line of a batch prompt.
var promptRow = regexp.MustCompile(`(?m)^Row \d+: Date: `)

func makeRows(n int) []IndexedRow {
	rows := make([]IndexedRow, n)
	for i := range rows {
		rows[i] = IndexedRow{
			Index: i,
			Data: model.Row{
				"Date":        "01/15/2024",
				"Amount":      fmt.Sprintf("-%d.00", i+1),
				"Description": fmt.Sprintf("TXN %02d", i),
			},
		}
	}
	return rows
}

func batchResponse(category string, indices ...int) llm.MockResponse {
	var b strings.Builder
	for _, idx := range indices {
		fmt.Fprintf(&b, "Row %d: %s\n", idx, category)
	}
	return llm.MockResponse{Response: b.String()}
}

func TestOrchestrator_NoRows(t *testing.T) {
	backend := llm.NewMockBackend()
	o := New(llm.NewSuggester(backend, llm.DefaultConfig()), DefaultConfig())

	result, err := o.RunBulk(context.Background(), nil, testCategories, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Mappings)
	assert.Equal(t, 0, result.ProcessedCount)
	assert.Equal(t, 0, result.UnmappedCount)
	assert.Equal(t, 0, backend.Calls())
}

func TestOrchestrator_TwelveRowsThreeBatches(t *testing.T) {
	backend := llm.NewMockBackend(
		batchResponse("Food", 0, 1, 2, 3, 4),
		batchResponse("transport", 5, 6, 7, 8, 9),
		batchResponse("Other", 10, 11),
	)
	var progress [][2]int
	o := New(llm.NewSuggester(backend, llm.DefaultConfig()), DefaultConfig(),
		WithProgress(func(processed, total int) {
			progress = append(progress, [2]int{processed, total})
		}))

	result, err := o.RunBulk(context.Background(), makeRows(12), testCategories, nil)
	require.NoError(t, err)

	require.Equal(t, 3, backend.Calls())
	prompts := backend.Prompts()
	for i, want := range []int{5, 5, 2} {
		assert.Equal(t, want, len(promptRow.FindAllString(prompts[i], -1)), "batch %d size", i+1)
	}

	assert.NotContains(t, prompts[0], "examples of previous categorizations")
	assert.Contains(t, prompts[1], `Description: "TXN 00" → Food`)
	assert.Contains(t, prompts[2], `Description: "TXN 00" → Food`)
	assert.Contains(t, prompts[2], `Description: "TXN 05" → Transport`)

	assert.Equal(t, [][2]int{{5, 12}, {10, 12}, {12, 12}}, progress)
	assert.Equal(t, 12, result.ProcessedCount)
	assert.Equal(t, 12, result.SuccessCount)
	assert.Equal(t, 0, result.UnmappedCount)
	assert.Equal(t, 3, result.BatchCount)
	assert.False(t, result.Canceled)
	require.Len(t, result.Mappings, 12)

	outcome := result.Mappings[7]
	require.NotNil(t, outcome.Suggestion)
	assert.Equal(t, "Transport", *outcome.Suggestion)
	assert.Nil(t, outcome.Error)
	assert.False(t, outcome.Confirmed)
	assert.Equal(t, "TXN 07", outcome.Data["Description"])
}

func TestOrchestrator_FailuresAreOutcomes(t *testing.T) {
	backend := llm.NewMockBackend(
		llm.MockResponse{Err: llm.ErrUnreachable},
		batchResponse("Food", 5),
	)
	o := New(llm.NewSuggester(backend, llm.DefaultConfig()), DefaultConfig())

	result, err := o.RunBulk(context.Background(), makeRows(7), testCategories, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, result.ProcessedCount)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 6, result.UnmappedCount)
	assert.Equal(t, 6, result.FailedCount())

	for idx := 0; idx < 5; idx++ {
		outcome := result.Mappings[idx]
		assert.Nil(t, outcome.Suggestion)
		require.NotNil(t, outcome.Error)
		assert.Equal(t, model.KindUnreachable, outcome.Error.Kind)
	}
	require.NotNil(t, result.Mappings[6].Error)
	assert.Equal(t, model.KindMissingSuggestion, result.Mappings[6].Error.Kind)

	// Failed rows never become history.
	assert.NotContains(t, backend.Prompts()[1], "examples of previous categorizations")
}

func TestOrchestrator_CallerHistoryUntouched(t *testing.T) {
	backend := llm.NewMockBackend(batchResponse("Food", 0, 1))
	o := New(llm.NewSuggester(backend, llm.DefaultConfig()), Config{BatchSize: 1})

	history := make(model.History, 1, 4)
	history[0] = model.HistoryExample{Description: "OLD", Category: "Other"}
	categories := []string{"Food", "Other"}

	_, err := o.RunBulk(context.Background(), makeRows(2), categories, history)
	require.NoError(t, err)

	assert.Len(t, history, 1)
	assert.Equal(t, []string{"Food", "Other"}, categories)
	assert.Contains(t, backend.Prompts()[1], `Description: "TXN 00" → Food`)
	assert.Contains(t, backend.Prompts()[1], `Description: "OLD" → Other`)
}

type cancelingSuggester struct {
	cancel  context.CancelFunc
	batches []model.Batch
	after   int
}

func (c *cancelingSuggester) SuggestBatch(_ context.Context, batch model.Batch, _ []string, _ model.History) map[int]model.SuggestionResult {
	c.batches = append(c.batches, batch)
	if len(c.batches) == c.after {
		c.cancel()
	}
	results := make(map[int]model.SuggestionResult, len(batch))
	for _, item := range batch {
		results[item.Index] = model.Suggested("Food")
	}
	return results
}

func TestOrchestrator_BatchSizes(t *testing.T) {
	tests := []struct {
		name      string
		want      []int
		rows      int
		batchSize int
	}{
		{name: "twelve rows", rows: 12, want: []int{5, 5, 2}},
		{name: "exact multiple", rows: 10, want: []int{5, 5}},
		{name: "fewer than one batch", rows: 3, want: []int{3}},
		{name: "custom size", rows: 7, batchSize: 3, want: []int{3, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggester := &cancelingSuggester{cancel: func() {}}
			o := New(suggester, Config{BatchSize: tt.batchSize})

			_, err := o.RunBulk(context.Background(), makeRows(tt.rows), testCategories, nil)
			require.NoError(t, err)

			sizes := make([]int, len(suggester.batches))
			for i, batch := range suggester.batches {
				sizes[i] = len(batch)
			}
			assert.Equal(t, tt.want, sizes)
		})
	}
}

func TestOrchestrator_CancelBetweenBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	suggester := &cancelingSuggester{cancel: cancel, after: 2}
	o := New(suggester, DefaultConfig())

	result, err := o.RunBulk(ctx, makeRows(12), testCategories, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	assert.True(t, result.Canceled)
	assert.Len(t, suggester.batches, 2)
	assert.Equal(t, 10, result.ProcessedCount)
	assert.Len(t, result.Mappings, 10)
	assert.Equal(t, 2, result.UnmappedCount)
}

type partialSuggester struct{}

func (partialSuggester) SuggestBatch(_ context.Context, batch model.Batch, _ []string, _ model.History) map[int]model.SuggestionResult {
	return map[int]model.SuggestionResult{batch[0].Index: model.Suggested("Food")}
}

func TestOrchestrator_MissingEntriesFilled(t *testing.T) {
	o := New(partialSuggester{}, DefaultConfig())

	result, err := o.RunBulk(context.Background(), makeRows(3), testCategories, nil)
	require.NoError(t, err)

	require.Len(t, result.Mappings, 3)
	assert.Equal(t, model.KindMissingSuggestion, result.Mappings[2].Error.Kind)
}

func TestOrchestrator_PreservesInputOrder(t *testing.T) {
	rows := []IndexedRow{
		{Index: 42, Data: model.Row{"Description": "A"}},
		{Index: 3, Data: model.Row{"Description": "B"}},
		{Index: 17, Data: model.Row{"Description": "C"}},
	}
	suggester := &cancelingSuggester{cancel: func() {}}
	o := New(suggester, Config{BatchSize: 2})

	_, err := o.RunBulk(context.Background(), rows, testCategories, nil)
	require.NoError(t, err)

	require.Len(t, suggester.batches, 2)
	assert.Equal(t, []int{42, 3}, suggester.batches[0].Indices())
	assert.Equal(t, []int{17}, suggester.batches[1].Indices())
}
