package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordImport(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.FindImport(ctx, "abc123")
	require.ErrorIs(t, err, common.ErrNotFound)

	recorded, err := store.RecordImport(ctx, model.FileImport{Hash: "abc123", FileName: "jan.csv", RowCount: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, recorded.ImportID)
	assert.False(t, recorded.ImportedAt.IsZero())

	found, err := store.FindImport(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, recorded.ImportID, found.ImportID)
	assert.Equal(t, "jan.csv", found.FileName)
	assert.Equal(t, 3, found.RowCount)

	_, err = store.RecordImport(ctx, model.FileImport{Hash: "abc123", FileName: "copy.csv"})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestRecordImport_Validation(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.RecordImport(context.Background(), model.FileImport{FileName: "x.csv"})
	assert.ErrorIs(t, err, ErrEmptyString)
}
