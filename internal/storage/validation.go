// Package storage provides the data persistence layer for budget mapping.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/budget-mapper/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidRowIndex = errors.New("row index cannot be negative")
	ErrInvalidCategory = errors.New("invalid category")
	ErrCategoryExists  = errors.New("category already exists")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRowIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRowIndex, index)
	}
	return nil
}

// validateProgress checks a progress snapshot before it replaces the stored one.
func validateProgress(progress *model.Progress) error {
	if progress == nil {
		return fmt.Errorf("%w: progress", ErrNilParameter)
	}
	for key, row := range progress.Rows {
		if err := validateRowIndex(key); err != nil {
			return err
		}
		if row.Mapped && strings.TrimSpace(row.Category) == "" {
			return fmt.Errorf("%w: row %d is mapped without a category", ErrInvalidCategory, key)
		}
	}
	return nil
}

// validateImport validates a file import record.
func validateImport(record model.FileImport) error {
	if err := validateString(record.Hash, "hash"); err != nil {
		return err
	}
	return validateString(record.FileName, "fileName")
}
