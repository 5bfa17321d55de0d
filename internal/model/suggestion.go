package model

import "fmt"

// ErrorKind classifies why a suggestion could not be produced.
type ErrorKind string

// Suggestion failure kinds.
const (
	KindUnreachable       ErrorKind = "unreachable"
	KindBackendError      ErrorKind = "backend_error"
	KindInvalidCategory   ErrorKind = "invalid_category"
	KindMissingSuggestion ErrorKind = "missing_suggestion"
)

// SuggestionResult is the outcome of one categorization attempt for one row.
// Category is set only when Success is true; Kind and Detail only when it is false.
type SuggestionResult struct {
	Category string
	Kind     ErrorKind
	Detail   string
	Success  bool
}

// Suggested returns a successful result.
func Suggested(category string) SuggestionResult {
	return SuggestionResult{Success: true, Category: category}
}

// Failed returns a failed result of the given kind.
func Failed(kind ErrorKind, detail string) SuggestionResult {
	return SuggestionResult{Kind: kind, Detail: detail}
}

// Err returns the failure as an error value, or nil on success.
func (r SuggestionResult) Err() *SuggestionError {
	if r.Success {
		return nil
	}
	return &SuggestionError{Kind: r.Kind, Detail: r.Detail}
}

// SuggestionError describes a failed suggestion.
type SuggestionError struct {
	Kind   ErrorKind
	Detail string
}

func (e *SuggestionError) Error() string {
	switch e.Kind {
	case KindUnreachable:
		return "model backend unreachable"
	case KindBackendError:
		return fmt.Sprintf("model backend error: %s", e.Detail)
	case KindInvalidCategory:
		return fmt.Sprintf("invalid category suggested: %q", e.Detail)
	case KindMissingSuggestion:
		return "no suggestion returned for row"
	default:
		return fmt.Sprintf("suggestion failed: %s", e.Kind)
	}
}
