package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/budget-mapper/internal/categories"
	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/model"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadProgress returns the stored progress. A fresh database yields an
// empty progress with no file name.
func (s *SQLiteStorage) LoadProgress(ctx context.Context) (*model.Progress, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	progress := &model.Progress{Rows: make(map[int]model.MappedRow)}

	var fileName sql.NullString
	var lastUpdated sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT file_name, total_rows, last_updated
		FROM progress
		WHERE id = 1`).Scan(&fileName, &progress.TotalRows, &lastUpdated)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	progress.FileName = fileName.String
	progress.LastUpdated = lastUpdated.Time

	rows, err := s.queryRows(ctx, s.db, `
		SELECT row_index, data, category, mapped
		FROM mapping_rows
		ORDER BY row_index`)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		progress.Rows[row.Index] = row
	}
	return progress, nil
}

// SaveProgress replaces the stored progress with progress and stamps
// LastUpdated.
func (s *SQLiteStorage) SaveProgress(ctx context.Context, progress *model.Progress) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProgress(progress); err != nil {
		return err
	}

	now := time.Now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertProgress(ctx, tx, progress.FileName, progress.TotalRows, now); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM mapping_rows`); err != nil {
			return fmt.Errorf("failed to clear rows: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO mapping_rows (row_index, data, category, mapped, updated_at)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare row insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for idx, row := range progress.Rows {
			data, err := json.Marshal(row.Data)
			if err != nil {
				return fmt.Errorf("failed to encode row %d: %w", idx, err)
			}
			if _, err := stmt.ExecContext(ctx, idx, string(data), nullString(row.Category), row.Mapped, now); err != nil {
				return fmt.Errorf("failed to save row %d: %w", idx, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	progress.LastUpdated = now
	return nil
}

// InitRows records a newly imported file. Rows are keyed by position;
// positions that already exist keep their data and mapping so re-importing
// never loses work.
func (s *SQLiteStorage) InitRows(ctx context.Context, fileName string, rows []model.Row) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(fileName, "fileName"); err != nil {
		return err
	}

	now := time.Now()
	var added int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertProgress(ctx, tx, fileName, len(rows), now); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO mapping_rows (row_index, data, mapped, updated_at)
			VALUES (?, ?, 0, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare row insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for idx, row := range rows {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to encode row %d: %w", idx, err)
			}
			result, err := stmt.ExecContext(ctx, idx, string(data), now)
			if err != nil {
				return fmt.Errorf("failed to insert row %d: %w", idx, err)
			}
			if n, err := result.RowsAffected(); err == nil {
				added += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("initialized rows", "file", fileName, "total", len(rows), "added", added)
	return nil
}

// Row returns one stored row or common.ErrNotFound.
func (s *SQLiteStorage) Row(ctx context.Context, index int) (*model.MappedRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRowIndex(index); err != nil {
		return nil, err
	}

	rows, err := s.queryRows(ctx, s.db, `
		SELECT row_index, data, category, mapped
		FROM mapping_rows
		WHERE row_index = ?`, index)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("row %d: %w", index, common.ErrNotFound)
	}
	return &rows[0], nil
}

// MapRow confirms category for a row. The category must exist
// (case-insensitively) and is stored in its canonical casing.
func (s *SQLiteStorage) MapRow(ctx context.Context, index int, category string) (*model.MappedRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRowIndex(index); err != nil {
		return nil, err
	}

	stored, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}
	canonical, ok := categories.Match(model.CategoryNames(stored), category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	row, err := s.Row(ctx, index)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE mapping_rows
			SET category = ?, mapped = 1, updated_at = ?
			WHERE row_index = ?`, canonical, now, index); err != nil {
			return fmt.Errorf("failed to map row: %w", err)
		}
		return touchProgress(ctx, tx, now)
	})
	if err != nil {
		return nil, err
	}

	row.Category = canonical
	row.Mapped = true
	slog.Debug("mapped row", "row", index, "category", canonical)
	return row, nil
}

// ApplySuggestions stores suggested categories on unconfirmed rows without
// marking them mapped. Unknown and already confirmed rows are skipped.
// It returns how many rows were updated.
func (s *SQLiteStorage) ApplySuggestions(ctx context.Context, suggestions map[int]string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(suggestions) == 0 {
		return 0, nil
	}

	now := time.Now()
	var updated int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE mapping_rows
			SET category = ?, updated_at = ?
			WHERE row_index = ? AND mapped = 0`)
		if err != nil {
			return fmt.Errorf("failed to prepare suggestion update: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for idx, category := range suggestions {
			result, err := stmt.ExecContext(ctx, category, now, idx)
			if err != nil {
				return fmt.Errorf("failed to apply suggestion for row %d: %w", idx, err)
			}
			if n, err := result.RowsAffected(); err == nil {
				updated += int(n)
			}
		}
		return touchProgress(ctx, tx, now)
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// UnmappedRows returns rows not yet confirmed, in row order.
func (s *SQLiteStorage) UnmappedRows(ctx context.Context) ([]model.MappedRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryRows(ctx, s.db, `
		SELECT row_index, data, category, mapped
		FROM mapping_rows
		WHERE mapped = 0
		ORDER BY row_index`)
}

// History returns confirmed rows as examples, in row order.
func (s *SQLiteStorage) History(ctx context.Context) (model.History, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.queryRows(ctx, s.db, `
		SELECT row_index, data, category, mapped
		FROM mapping_rows
		WHERE mapped = 1
		ORDER BY row_index`)
	if err != nil {
		return nil, err
	}

	history := make(model.History, 0, len(rows))
	for _, row := range rows {
		history = append(history, model.ExampleFor(row.Data.Transaction(), row.Category))
	}
	return history, nil
}

// Stats summarizes mapping progress. The category breakdown counts
// confirmed rows only.
func (s *SQLiteStorage) Stats(ctx context.Context) (*model.MappingStats, error) {
	progress, err := s.LoadProgress(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.MappingStats{
		FileName:          progress.FileName,
		LastUpdated:       progress.LastUpdated,
		TotalRows:         len(progress.Rows),
		CategoryBreakdown: make(map[string]int),
	}
	for _, row := range progress.Rows {
		if !row.Mapped {
			continue
		}
		stats.MappedRows++
		stats.CategoryBreakdown[row.Category]++
	}
	stats.RemainingRows = stats.TotalRows - stats.MappedRows
	return stats, nil
}

// Reset discards all rows and progress. Categories and import records are kept.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM mapping_rows`); err != nil {
			return fmt.Errorf("failed to clear rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM progress`); err != nil {
			return fmt.Errorf("failed to clear progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("mapping progress reset")
	return nil
}

func (s *SQLiteStorage) queryRows(ctx context.Context, q queryer, query string, args ...any) ([]model.MappedRow, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.MappedRow
	for rows.Next() {
		var (
			row      model.MappedRow
			data     string
			category sql.NullString
		)
		if err := rows.Scan(&row.Index, &data, &category, &row.Mapped); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &row.Data); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", row.Index, err)
		}
		row.Category = category.String
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

func upsertProgress(ctx context.Context, tx *sql.Tx, fileName string, totalRows int, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO progress (id, file_name, total_rows, last_updated)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			file_name = excluded.file_name,
			total_rows = excluded.total_rows,
			last_updated = excluded.last_updated`,
		nullString(fileName), totalRows, now)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func touchProgress(ctx context.Context, tx *sql.Tx, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `UPDATE progress SET last_updated = ? WHERE id = 1`, now); err != nil {
		return fmt.Errorf("failed to update progress timestamp: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
