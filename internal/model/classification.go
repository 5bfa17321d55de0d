// Package model defines the core domain models used throughout the application.
package model

import "time"

// RowOutcome is the bulk categorization outcome for one row.
// Confirmed stays false until the user accepts the suggestion.
type RowOutcome struct {
	Data       Row
	Suggestion *string
	Error      *SuggestionError
	Confirmed  bool
}

// OutcomeFor converts a suggestion result into a row outcome.
func OutcomeFor(data Row, result SuggestionResult) RowOutcome {
	outcome := RowOutcome{Data: data}
	if result.Success {
		category := result.Category
		outcome.Suggestion = &category
	} else {
		outcome.Error = result.Err()
	}
	return outcome
}

// MappedRow is a persisted row and its assigned category.
// Mapped is true only for user-confirmed categories; a suggested category
// is stored with Mapped false.
type MappedRow struct {
	Data     Row
	Category string
	Index    int
	Mapped   bool
}

// Progress tracks mapping progress for the current imported file.
type Progress struct {
	LastUpdated time.Time
	Rows        map[int]MappedRow
	FileName    string
	TotalRows   int
}

// MappingStats summarizes progress.
type MappingStats struct {
	LastUpdated       time.Time
	CategoryBreakdown map[string]int
	FileName          string
	TotalRows         int
	MappedRows        int
	RemainingRows     int
}

// FileImport records an imported statement file by content hash.
type FileImport struct {
	ImportedAt time.Time
	Hash       string
	FileName   string
	ImportID   string
	RowCount   int
}
