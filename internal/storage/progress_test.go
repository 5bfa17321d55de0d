package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProgress_Empty(t *testing.T) {
	store := createTestStorage(t)

	progress, err := store.LoadProgress(context.Background())
	require.NoError(t, err)

	assert.Empty(t, progress.FileName)
	assert.Equal(t, 0, progress.TotalRows)
	assert.Empty(t, progress.Rows)
	assert.True(t, progress.LastUpdated.IsZero())
}

func TestInitRows(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.InitRows(ctx, "jan.csv", sampleRows()))

	progress, err := store.LoadProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jan.csv", progress.FileName)
	assert.Equal(t, 3, progress.TotalRows)
	assert.False(t, progress.LastUpdated.IsZero())
	require.Len(t, progress.Rows, 3)
	assert.Equal(t, "SHELL OIL", progress.Rows[1].Data["Description"])
	assert.False(t, progress.Rows[1].Mapped)
	assert.Empty(t, progress.Rows[1].Category)
}

func TestInitRows_KeepsExistingMappings(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.InitRows(ctx, "jan.csv", sampleRows()))
	_, err := store.MapRow(ctx, 0, "Food & Groceries")
	require.NoError(t, err)

	reimport := append(sampleRows(), model.Row{"Date": "01/05/2024", "Description": "UBER"})
	reimport[0] = model.Row{"Description": "CHANGED"}
	require.NoError(t, store.InitRows(ctx, "jan-v2.csv", reimport))

	progress, err := store.LoadProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jan-v2.csv", progress.FileName)
	assert.Equal(t, 4, progress.TotalRows)
	require.Len(t, progress.Rows, 4)
	assert.True(t, progress.Rows[0].Mapped)
	assert.Equal(t, "STARBUCKS", progress.Rows[0].Data["Description"])
	assert.Equal(t, "UBER", progress.Rows[3].Data["Description"])
}

func TestMapRow(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.InitRows(ctx, "jan.csv", sampleRows()))

	tests := []struct {
		wantErr  error
		name     string
		category string
		want     string
		index    int
	}{
		{name: "exact", index: 0, category: "Food & Groceries", want: "Food & Groceries"},
		{name: "canonicalized", index: 1, category: "transportation", want: "Transportation"},
		{name: "unknown category", index: 2, category: "Pets", wantErr: ErrInvalidCategory},
		{name: "unknown row", index: 99, category: "Other", wantErr: common.ErrNotFound},
		{name: "negative row", index: -1, category: "Other", wantErr: ErrInvalidRowIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := store.MapRow(ctx, tt.index, tt.category)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Category)
			assert.True(t, row.Mapped)

			stored, err := store.Row(ctx, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Category)
			assert.True(t, stored.Mapped)
		})
	}
}

func TestApplySuggestions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.InitRows(ctx, "jan.csv", sampleRows()))
	_, err := store.MapRow(ctx, 0, "Food & Groceries")
	require.NoError(t, err)

	updated, err := store.ApplySuggestions(ctx, map[int]string{
		0:  "Other",
		1:  "Transportation",
		42: "Other",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	confirmed, err := store.Row(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Food & Groceries", confirmed.Category)

	suggested, err := store.Row(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Transportation", suggested.Category)
	assert.False(t, suggested.Mapped)

	unmapped, err := store.UnmappedRows(ctx)
	require.NoError(t, err)
	require.Len(t, unmapped, 2)
	assert.Equal(t, 1, unmapped[0].Index)
	assert.Equal(t, 2, unmapped[1].Index)
}

func TestHistory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.InitRows(ctx, "jan.csv", sampleRows()))

	_, err := store.MapRow(ctx, 2, "Subscriptions")
	require.NoError(t, err)
	_, err = store.MapRow(ctx, 1, "Transportation")
	require.NoError(t, err)
	_, err = store.ApplySuggestions(ctx, map[int]string{0: "Food & Groceries"})
	require.NoError(t, err)

	history, err := store.History(ctx)
	require.NoError(t, err)

	assert.Equal(t, model.History{
		{Date: "01/03/2024", Amount: "-30.00", Description: "SHELL OIL", Category: "Transportation"},
		{Date: "01/04/2024", Amount: "-12.99", Description: "NETFLIX", Category: "Subscriptions"},
	}, history)
}

func TestStats(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.InitRows(ctx, "jan.csv", sampleRows()))
	_, err := store.MapRow(ctx, 0, "Shopping")
	require.NoError(t, err)
	_, err = store.MapRow(ctx, 2, "shopping")
	require.NoError(t, err)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, "jan.csv", stats.FileName)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 2, stats.MappedRows)
	assert.Equal(t, 1, stats.RemainingRows)
	assert.Equal(t, map[string]int{"Shopping": 2}, stats.CategoryBreakdown)
	assert.False(t, stats.LastUpdated.IsZero())
}

func TestSaveProgress_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	progress := &model.Progress{
		FileName:  "feb.json",
		TotalRows: 2,
		Rows: map[int]model.MappedRow{
			0: {Index: 0, Data: model.Row{"Description": "RENT"}, Category: "Utilities", Mapped: true},
			1: {Index: 1, Data: model.Row{"Description": "GYM"}},
		},
	}
	require.NoError(t, store.SaveProgress(ctx, progress))
	assert.False(t, progress.LastUpdated.IsZero())

	loaded, err := store.LoadProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feb.json", loaded.FileName)
	assert.Equal(t, progress.Rows, loaded.Rows)
}

func TestSaveProgress_RejectsMappedWithoutCategory(t *testing.T) {
	store := createTestStorage(t)

	err := store.SaveProgress(context.Background(), &model.Progress{
		Rows: map[int]model.MappedRow{0: {Mapped: true}},
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestReset(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	require.NoError(t, store.InitRows(ctx, "jan.csv", sampleRows()))
	_, err := store.CreateCategory(ctx, "Travel")
	require.NoError(t, err)

	require.NoError(t, store.Reset(ctx))

	progress, err := store.LoadProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, progress.Rows)
	assert.Empty(t, progress.FileName)

	_, err = store.GetCategoryByName(ctx, "Travel")
	assert.NoError(t, err)
}
