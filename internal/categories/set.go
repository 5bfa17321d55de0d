package categories

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// SimilarityDistance is the largest edit distance at which two category
// names are reported as near-duplicates.
const SimilarityDistance = 2

var (
	// ErrEmptyCategory is returned when a name is empty after correction.
	ErrEmptyCategory = errors.New("category name is empty")
	// ErrDuplicateCategory is returned when a name already exists, ignoring case.
	ErrDuplicateCategory = errors.New("category already exists")
)

// Match resolves candidate against categories: an exact match first, then a
// case-insensitive one. On a case-insensitive hit the canonical spelling
// from categories is returned.
func Match(categories []string, candidate string) (string, bool) {
	for _, cat := range categories {
		if cat == candidate {
			return cat, true
		}
	}
	for _, cat := range categories {
		if strings.EqualFold(cat, candidate) {
			return cat, true
		}
	}
	return "", false
}

// Closest returns the category with the smallest case-insensitive edit
// distance to candidate, if that distance is within SimilarityDistance.
func Closest(categories []string, candidate string) (string, bool) {
	best, bestDist := "", -1
	lower := strings.ToLower(candidate)
	for _, cat := range categories {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(cat))
		if bestDist < 0 || d < bestDist {
			best, bestDist = cat, d
		}
	}
	if bestDist < 0 || bestDist > SimilarityDistance {
		return "", false
	}
	return best, true
}

// AddResult reports what Add did with a name.
type AddResult struct {
	Name       string
	Similar    []string
	Validation Validation
}

// Set is an ordered-by-name collection of category names, unique ignoring case.
// It is safe for concurrent use. Callers that need a stable view for the
// length of a bulk run should take a Snapshot.
type Set struct {
	names []string
	mu    sync.RWMutex
}

// NewSet builds a set from names, dropping blanks and case-insensitive duplicates.
// The first spelling of a duplicated name wins.
func NewSet(names []string) *Set {
	s := &Set{}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		s.names = append(s.names, name)
	}
	s.sort()
	return s
}

// Snapshot returns a copy of the names in set order.
func (s *Set) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Match resolves name against the set; see the package-level Match.
func (s *Set) Match(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Match(s.names, name)
}

// Similar lists existing categories within SimilarityDistance of name,
// excluding exact case-insensitive matches.
func (s *Set) Similar(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(name)
	var similar []string
	for _, cat := range s.names {
		catLower := strings.ToLower(cat)
		if catLower == lower {
			continue
		}
		if levenshtein.ComputeDistance(lower, catLower) <= SimilarityDistance {
			similar = append(similar, cat)
		}
	}
	return similar
}

// Add validates name and inserts the corrected form. Near-duplicates are
// reported in the result but do not block the insert.
func (s *Set) Add(name string) (AddResult, error) {
	v := Validate(name)
	result := AddResult{Validation: v, Name: v.Corrected}
	if v.Corrected == "" {
		return result, fmt.Errorf("%w: %q", ErrEmptyCategory, name)
	}

	if existing, ok := s.Match(v.Corrected); ok {
		return result, fmt.Errorf("%w: %q", ErrDuplicateCategory, existing)
	}
	result.Similar = s.Similar(v.Corrected)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := Match(s.names, v.Corrected); ok {
		return result, fmt.Errorf("%w: %q", ErrDuplicateCategory, v.Corrected)
	}
	s.names = append(s.names, v.Corrected)
	s.sort()
	return result, nil
}

func (s *Set) sort() {
	sort.SliceStable(s.names, func(i, j int) bool {
		a, b := strings.ToLower(s.names[i]), strings.ToLower(s.names[j])
		if a != b {
			return a < b
		}
		return s.names[i] < s.names[j]
	})
}
