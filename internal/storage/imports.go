package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/model"
)

// FindImport returns the import record for a content hash, or
// common.ErrNotFound when the file has not been imported before.
func (s *SQLiteStorage) FindImport(ctx context.Context, hash string) (*model.FileImport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return nil, err
	}

	var record model.FileImport
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, import_id, file_name, row_count, imported_at
		FROM file_imports
		WHERE hash = ?`, hash).Scan(
		&record.Hash, &record.ImportID, &record.FileName, &record.RowCount, &record.ImportedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import %s: %w", hash, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import: %w", err)
	}
	return &record, nil
}

// RecordImport stores an import record, assigning an ImportID and
// timestamp when missing. Recording the same hash twice returns
// common.ErrDuplicateEntry.
func (s *SQLiteStorage) RecordImport(ctx context.Context, record model.FileImport) (*model.FileImport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateImport(record); err != nil {
		return nil, err
	}

	if record.ImportID == "" {
		record.ImportID = uuid.NewString()
	}
	if record.ImportedAt.IsZero() {
		record.ImportedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO file_imports (hash, import_id, file_name, row_count, imported_at)
		VALUES (?, ?, ?, ?, ?)`,
		record.Hash, record.ImportID, record.FileName, record.RowCount, record.ImportedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("import %s: %w", record.Hash, common.ErrDuplicateEntry)
	}
	return &record, nil
}
