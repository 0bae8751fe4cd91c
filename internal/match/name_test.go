package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		input    string
		expected Name
	}{
		{"", Name{}},
		{"Cher", Name{Last: "Cher"}},
		{"John Smith", Name{First: "John", Last: "Smith"}},
		{"John Quincy Smith", Name{First: "John", Middle: "Quincy", Last: "Smith"}},
		{"Maria de la Cruz", Name{First: "Maria", Middle: "de la", Last: "Cruz"}},
		{"  John   Smith  ", Name{First: "John", Last: "Smith"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitName(tt.input))
		})
	}
}

func TestSimilarityIdentical(t *testing.T) {
	a := Name{First: "John", Last: "Smith"}
	assert.InDelta(t, 1.0, Similarity(a, a), 0.0001)

	withMiddle := Name{First: "John", Middle: "Quincy", Last: "Smith"}
	assert.InDelta(t, 1.0, Similarity(withMiddle, withMiddle), 0.0001)

	single := Name{Last: "Cher"}
	assert.InDelta(t, 1.0, Similarity(single, single), 0.0001)
}

func TestSimilarityCaseAndDiacritics(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity(
		Name{First: "JOHN", Last: "SMITH"},
		Name{First: "john", Last: "smith"},
	), 0.0001)

	assert.InDelta(t, 1.0, Similarity(
		Name{First: "José", Last: "García"},
		Name{First: "Jose", Last: "Garcia"},
	), 0.0001)
}

func TestSimilaritySymmetry(t *testing.T) {
	pairs := [][2]Name{
		{{First: "John", Last: "Smith"}, {First: "Jon", Last: "Smith"}},
		{{First: "Maria", Last: "Garcia"}, {First: "John", Last: "Smith"}},
		{{First: "A", Middle: "B", Last: "C"}, {First: "X", Last: "Z"}},
		{{Last: "Cher"}, {First: "John", Last: "Smith"}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), 0.0001)
	}
}

func TestSimilarityRanksCloseNamesAboveDistant(t *testing.T) {
	target := Name{First: "John", Last: "Smith"}
	closeMatch := Similarity(target, Name{First: "Jon", Last: "Smith"})
	distant := Similarity(target, Name{First: "Maria", Last: "Garcia"})

	assert.Greater(t, closeMatch, distant)
	assert.Greater(t, closeMatch, 0.8)
	assert.Less(t, distant, 0.5)
}

func TestSimilarityMiddleNeverPenalizes(t *testing.T) {
	// Missing middle on one side does not reduce an otherwise exact match.
	withMiddle := Name{First: "John", Middle: "Quincy", Last: "Smith"}
	without := Name{First: "John", Last: "Smith"}
	assert.InDelta(t, 1.0, Similarity(withMiddle, without), 0.0001)

	// Matching middle initial counts fully against the spelled-out name.
	initial := Name{First: "John", Middle: "Q", Last: "Smith"}
	assert.InDelta(t, 1.0, Similarity(withMiddle, initial), 0.0001)

	// A mismatched middle drags the score below exact.
	wrongMiddle := Name{First: "John", Middle: "Xavier", Last: "Smith"}
	assert.Less(t, Similarity(withMiddle, wrongMiddle), 1.0)
}

func TestSimilarityEmptyInputs(t *testing.T) {
	assert.Zero(t, Similarity(Name{}, Name{}))
	assert.Zero(t, Similarity(Name{}, Name{First: "John", Last: "Smith"}))

	// One-sided empty components degrade, not fail.
	partial := Similarity(Name{Last: "Smith"}, Name{First: "John", Last: "Smith"})
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 1.0)
}

func TestSimilarityBounds(t *testing.T) {
	names := []Name{
		{},
		{Last: "X"},
		{First: "A", Last: "B"},
		{First: "Christopher", Middle: "J", Last: "Montgomery"},
		{First: "李", Last: "王"},
	}
	for _, a := range names {
		for _, b := range names {
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}
