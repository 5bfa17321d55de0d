package storage

import (
	"context"

	"github.com/Veraticus/budget-mapper/internal/model"
)

// Store persists mapping progress, categories and import records.
type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	LoadProgress(ctx context.Context) (*model.Progress, error)
	SaveProgress(ctx context.Context, progress *model.Progress) error
	InitRows(ctx context.Context, fileName string, rows []model.Row) error
	Row(ctx context.Context, index int) (*model.MappedRow, error)
	MapRow(ctx context.Context, index int, category string) (*model.MappedRow, error)
	ApplySuggestions(ctx context.Context, suggestions map[int]string) (int, error)
	UnmappedRows(ctx context.Context) ([]model.MappedRow, error)
	History(ctx context.Context) (model.History, error)
	Stats(ctx context.Context) (*model.MappingStats, error)
	Reset(ctx context.Context) error

	GetCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)

	FindImport(ctx context.Context, hash string) (*model.FileImport, error)
	RecordImport(ctx context.Context, record model.FileImport) (*model.FileImport, error)
}

var _ Store = (*SQLiteStorage)(nil)
