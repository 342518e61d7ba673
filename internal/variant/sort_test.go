package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		value string
		want  SortClass
	}{
		{"10", SortNumeric},
		{"9.5", SortNumeric},
		{"-2", SortNumeric},
		{"US 10", SortShoeSize},
		{"EU42", SortShoeSize},
		{"XL", SortLetteredSize},
		{"XXS", SortLetteredSize},
		{"X-LARGE", SortLetteredSizeExplicit},
		{"MEDIUM", SortLetteredSizeExplicit},
		{"Burgundy", SortStandard},
		{"xl", SortStandard},
		{"NaN", SortStandard},
		{"", SortStandard},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value))
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Negative(t, Compare("2", "10", SortNumeric))
	assert.Negative(t, Compare("2", "10.5", SortNumeric))
	assert.Positive(t, Compare("7.25", "7.2", SortNumeric))
	assert.Negative(t, Compare("US 9", "US 10", SortShoeSize))
	assert.Negative(t, Compare("S", "XL", SortLetteredSize))
	assert.Positive(t, Compare("X-LARGE", "LARGE", SortLetteredSizeExplicit))
	assert.Negative(t, Compare("Blue", "Red", SortStandard))
	assert.Negative(t, Compare("Zebra", "apple", SortStandard), "standard order is case-sensitive")

	// pairs that do not parse under the class compare equal
	assert.Zero(t, Compare("10", "Burgundy", SortNumeric))
	assert.Zero(t, Compare("US 9", "Wide", SortShoeSize))
	assert.Zero(t, Compare("M", "Burgundy", SortLetteredSize))
	assert.Zero(t, Compare("SMALL", "S", SortLetteredSizeExplicit))
}

func TestSortBy_Names(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "Numeric mixes integers and decimals",
			input: []string{"10", "2", "1.5", "32"},
			want:  []string{"1.5", "2", "10", "32"},
		},
		{
			name:  "Shoe sizes by first integer",
			input: []string{"US 11", "US 9", "US 10"},
			want:  []string{"US 9", "US 10", "US 11"},
		},
		{
			name:  "Lettered sizes by rank",
			input: []string{"XL", "S", "XXS", "M", "XXXL"},
			want:  []string{"XXS", "S", "M", "XL", "XXXL"},
		},
		{
			name:  "Explicit lettered sizes by rank",
			input: []string{"LARGE", "SMALL", "X-LARGE", "MEDIUM", "X-SMALL"},
			want:  []string{"X-SMALL", "SMALL", "MEDIUM", "LARGE", "X-LARGE"},
		},
		{
			name:  "Standard lexicographic",
			input: []string{"Navy", "Burgundy", "Olive"},
			want:  []string{"Burgundy", "Navy", "Olive"},
		},
		{
			name:  "Mixed classes fall back to equal for unparseable pairs",
			input: []string{"L", "S", "Burgundy"},
			want:  []string{"S", "L", "Burgundy"},
		},
		{
			name:  "Single element unchanged",
			input: []string{"Burgundy"},
			want:  []string{"Burgundy"},
		},
		{
			name:  "Empty",
			input: []string{},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SortBy(tt.input, identity))
		})
	}
}

func TestSortBy_DoesNotMutateInput(t *testing.T) {
	input := []string{"XL", "S"}
	sorted := SortBy(input, identity)

	assert.Equal(t, []string{"S", "XL"}, sorted)
	assert.Equal(t, []string{"XL", "S"}, input)
}

func identity(s string) string { return s }
