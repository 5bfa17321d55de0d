package llm

import (
	"strconv"
	"strings"
)

// rowPrefix starts every qualifying line of a batch response.
const rowPrefix = "Row"

// BatchLine is one "Row <idx>: <category>" line from a batch response.
// Category is the raw text, cleaned of whitespace and quotes but not yet
// validated against the category set.
type BatchLine struct {
	Category string
	Index    int
}

// ParseBatchResponse extracts row/category candidates in response order.
// Lines that do not start with "Row", have no colon, carry a non-integer
// index or an empty category are skipped.
func ParseBatchResponse(content string) []BatchLine {
	var lines []BatchLine
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, rowPrefix) {
			continue
		}

		rowPart, categoryPart, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		idx, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(rowPart, rowPrefix)))
		if err != nil {
			continue
		}

		category := cleanSuggestion(categoryPart)
		if category == "" {
			continue
		}

		lines = append(lines, BatchLine{Index: idx, Category: category})
	}
	return lines
}

// cleanSuggestion trims whitespace and surrounding quote characters.
func cleanSuggestion(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}
