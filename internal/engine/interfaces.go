package engine

import (
	"context"

	"github.com/Veraticus/budget-mapper/internal/model"
)

// BatchSuggester produces a result for every row of a batch.
// *llm.Suggester satisfies it.
type BatchSuggester interface {
	SuggestBatch(ctx context.Context, batch model.Batch, categories []string, history model.History) map[int]model.SuggestionResult
}

// ProgressFunc is called after each batch with the number of rows
// processed so far and the total for the run.
type ProgressFunc func(processed, total int)
