package categories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantCorrected  string
		wantCorrection string
		wantChanged    bool
	}{
		{
			name:           "title case with ampersand and punctuation",
			input:          "  coffee & snacks!!",
			wantCorrected:  "Coffee & Snacks",
			wantCorrection: "removed invalid characters",
			wantChanged:    true,
		},
		{
			name:          "already valid",
			input:         "Food & Groceries",
			wantCorrected: "Food & Groceries",
			wantChanged:   false,
		},
		{
			name:           "lowercase only needs capitalization",
			input:          "healthcare",
			wantCorrected:  "Healthcare",
			wantCorrection: "capitalized",
			wantChanged:    true,
		},
		{
			name:           "uppercase is normalized",
			input:          "GAS STATIONS",
			wantCorrected:  "Gas Stations",
			wantCorrection: "capitalized",
			wantChanged:    true,
		},
		{
			name:          "allowed separators survive",
			input:         "Fast-Food/Takeout",
			wantCorrected: "Fast-Food/Takeout",
			wantChanged:   false,
		},
		{
			name:           "empty input",
			input:          "",
			wantCorrected:  "",
			wantCorrection: "empty name",
			wantChanged:    true,
		},
		{
			name:           "whitespace only",
			input:          "   \t ",
			wantCorrected:  "",
			wantCorrection: "empty name",
			wantChanged:    true,
		},
		{
			name:           "only invalid characters",
			input:          "!!!",
			wantCorrected:  "",
			wantCorrection: "empty name after correction",
			wantChanged:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.input)
			assert.Equal(t, tt.input, got.Original)
			assert.Equal(t, tt.wantCorrected, got.Corrected)
			assert.Equal(t, tt.wantChanged, got.HasCorrections)
			if tt.wantCorrection != "" {
				assert.True(t, containsPrefix(got.Corrections, tt.wantCorrection),
					"corrections %v should mention %q", got.Corrections, tt.wantCorrection)
			} else {
				assert.Empty(t, got.Corrections)
			}
		})
	}
}

func TestValidateTruncatesBeforeOtherCorrections(t *testing.T) {
	input := strings.Repeat("a", 60)

	got := Validate(input)

	require.True(t, got.HasCorrections)
	require.GreaterOrEqual(t, len(got.Corrections), 2)
	assert.Equal(t, "truncated from 60 to 50 characters", got.Corrections[0])
	assert.True(t, strings.HasPrefix(got.Corrections[1], "capitalized"))
	assert.Equal(t, "A"+strings.Repeat("a", 49), got.Corrected)
}

func TestValidateStripsAfterCapitalizing(t *testing.T) {
	got := Validate("pets (vet)")

	assert.Equal(t, "Pets Vet", got.Corrected)
	require.Len(t, got.Corrections, 2)
	assert.Contains(t, got.Corrections[0], `"Pets (Vet)"`)
	assert.Contains(t, got.Corrections[1], `"Pets (Vet)" to "Pets Vet"`)
}

func containsPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
