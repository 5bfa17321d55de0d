// Package ingest loads statement files into raw rows.
package ingest

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/budget-mapper/internal/common"
	"github.com/Veraticus/budget-mapper/internal/model"
)

// Format identifies a supported statement file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Result is a parsed statement file.
type Result struct {
	FileName string
	Hash     string
	Format   Format
	Rows     []model.Row
	Skipped  int
	Errors   []error
}

// DetectFormat picks the format from the file extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (use CSV or JSON)", common.ErrUnsupportedFormat, fileName)
	}
}

// LoadFile reads and parses the statement at path.
func LoadFile(path string) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path) //nolint:gosec // user-supplied statement path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := Parse(bytes.NewReader(content), format)
	if err != nil {
		return nil, err
	}
	result.FileName = filepath.Base(path)
	result.Hash = HashContent(content)
	return result, nil
}

// HashContent returns the hex SHA-256 of a file's bytes.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Parse reads rows in the given format. Rows carrying neither a date nor
// a description are dropped and counted in Skipped.
func Parse(r io.Reader, format Format) (*Result, error) {
	var (
		rows []model.Row
		errs []error
		err  error
	)
	switch format {
	case FormatCSV:
		rows, errs, err = parseCSV(r)
	case FormatJSON:
		rows, err = parseJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{Format: format, Errors: errs}
	for _, row := range rows {
		if row.Transaction().IsEmpty() {
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	if len(result.Rows) == 0 {
		return result, common.ErrNoRows
	}
	return result, nil
}

// parseCSV maps each record onto the header row. Malformed records are
// reported and skipped.
func parseCSV(r io.Reader) ([]model.Row, []error, error) {
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	header, err := csvr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	var (
		rows []model.Row
		errs []error
	)
	line := 1
	for {
		line++
		rec, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		row := make(model.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, errs, nil
}

// parseJSON reads an array of objects. Non-string values are rendered as
// text so every row is a flat string map.
func parseJSON(r io.Reader) ([]model.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON rows: %w", err)
	}

	rows := make([]model.Row, 0, len(records))
	for _, record := range records {
		row := make(model.Row, len(record))
		for key, value := range record {
			row[key] = stringify(value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
