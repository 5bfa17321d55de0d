package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCategories_SeededAndSorted(t *testing.T) {
	store := createTestStorage(t)

	cats, err := store.GetCategories(context.Background())
	require.NoError(t, err)

	names := model.CategoryNames(cats)
	assert.ElementsMatch(t, model.DefaultCategories, names)
	assert.Equal(t, "Entertainment", names[0])
	assert.Equal(t, "Utilities", names[len(names)-1])
}

func TestCreateCategory(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, "  Travel ")
	require.NoError(t, err)
	assert.Equal(t, "Travel", cat.Name)
	assert.Positive(t, cat.ID)

	found, err := store.GetCategoryByName(ctx, "travel")
	require.NoError(t, err)
	assert.Equal(t, "Travel", found.Name)

	_, err = store.CreateCategory(ctx, "TRAVEL")
	assert.ErrorIs(t, err, ErrCategoryExists)

	_, err = store.CreateCategory(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestGetCategoryByName_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetCategoryByName(context.Background(), "Pets")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
