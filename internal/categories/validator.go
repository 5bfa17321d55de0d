package categories

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest category name kept after correction.
const MaxNameLength = 50

// Validation describes the corrections applied to a category name.
type Validation struct {
	Original       string
	Corrected      string
	Corrections    []string
	HasCorrections bool
}

// Validate normalizes a user-supplied category name. It never fails: the
// corrected name may be empty, in which case Corrections explains why.
//
// Corrections are applied in order: length truncation, capitalization,
// character stripping. Each step works on the previous step's output.
func Validate(name string) Validation {
	v := Validation{Original: name}

	current := strings.TrimSpace(name)
	if current == "" {
		v.Corrections = append(v.Corrections, "empty name")
		v.HasCorrections = true
		return v
	}

	if n := utf8.RuneCountInString(current); n > MaxNameLength {
		current = strings.TrimSpace(string([]rune(current)[:MaxNameLength]))
		v.Corrections = append(v.Corrections,
			fmt.Sprintf("truncated from %d to %d characters", n, utf8.RuneCountInString(current)))
	}

	if titled := titleCase(current); titled != current {
		v.Corrections = append(v.Corrections, fmt.Sprintf("capitalized %q to %q", current, titled))
		current = titled
	}

	if stripped := stripInvalid(current); stripped != current {
		v.Corrections = append(v.Corrections, fmt.Sprintf("removed invalid characters: %q to %q", current, stripped))
		current = stripped
	}

	if current == "" {
		v.Corrections = append(v.Corrections, "empty name after correction")
	}

	v.Corrected = current
	v.HasCorrections = len(v.Corrections) > 0
	return v
}

// titleCase capitalizes the first letter of every word and lowercases the
// rest. The "&" token has no letters and passes through unchanged.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if word == "&" {
			continue
		}
		words[i] = titleWord(word)
	}
	return strings.Join(words, " ")
}

func titleWord(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	startOfPart := true
	for _, r := range word {
		switch {
		case unicode.IsLetter(r):
			if startOfPart {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			startOfPart = false
		case unicode.IsDigit(r) || r == '\'':
			b.WriteRune(r)
			startOfPart = false
		default:
			b.WriteRune(r)
			startOfPart = true
		}
	}
	return b.String()
}

func stripInvalid(s string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		switch r {
		case '&', '-', '/':
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(kept), " ")
}
