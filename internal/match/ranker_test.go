package match

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-health/screening-cli/internal/model"
)

func candidate(id, name, testType, date string, status model.ScreeningStatus) model.CandidateRecord {
	return model.CandidateRecord{
		ID:              id,
		ClientID:        "client-" + id,
		DisplayName:     name,
		TestType:        testType,
		CollectionDate:  date,
		ScreeningStatus: status,
	}
}

func TestFilterByStatus(t *testing.T) {
	candidates := []model.CandidateRecord{
		candidate("1", "A", "urine-10", "2026-08-01", model.StatusPending),
		candidate("2", "B", "urine-10", "2026-08-01", model.StatusScreened),
		candidate("3", "C", "urine-10", "2026-08-01", model.StatusComplete),
		candidate("4", "D", "urine-10", "2026-08-01", model.StatusScheduled),
	}

	filtered := FilterByStatus(candidates, true)
	require.Len(t, filtered, 2)
	assert.Equal(t, "1", filtered[0].ID)
	assert.Equal(t, "4", filtered[1].ID)

	// Non-screen workflow is identity.
	assert.Equal(t, candidates, FilterByStatus(candidates, false))
}

func TestFilterByTestType(t *testing.T) {
	candidates := []model.CandidateRecord{
		candidate("1", "A", "urine-10", "2026-08-01", model.StatusPending),
		candidate("2", "B", "saliva-5", "2026-08-01", model.StatusPending),
	}

	filtered := FilterByTestType(candidates, "urine-10")
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)

	// No type supplied: identity, never a fabricated default.
	assert.Equal(t, candidates, FilterByTestType(candidates, ""))

	// Unknown type matches nothing.
	assert.Empty(t, FilterByTestType(candidates, "hair-12"))
}

func TestScoreNameOnly(t *testing.T) {
	c := candidate("1", "John Smith", "urine-10", "2026-08-10", model.StatusPending)

	// Exact name, no date: full 60 name points.
	assert.Equal(t, 60, Score("John Smith", "", c))

	// No inputs at all.
	assert.Equal(t, 0, Score("", "", c))
}

func TestScoreDateTiers(t *testing.T) {
	tests := []struct {
		reportDate string
		expected   int
	}{
		{"2026-08-10", 40}, // exact day
		{"2026-08-11", 30}, // 1 day
		{"2026-08-09", 30},
		{"2026-08-13", 20}, // 3 days
		{"2026-08-17", 10}, // 7 days
		{"2026-08-18", 0},  // 8 days
		{"2026-09-30", 0},
	}
	c := candidate("1", "John Smith", "urine-10", "2026-08-10", model.StatusPending)
	for _, tt := range tests {
		t.Run(tt.reportDate, func(t *testing.T) {
			assert.Equal(t, tt.expected, Score("", tt.reportDate, c))
		})
	}
}

func TestScoreIgnoresTimeOfDay(t *testing.T) {
	c := candidate("1", "John Smith", "urine-10", "2026-08-10T23:45:00Z", model.StatusPending)
	assert.Equal(t, 40, Score("", "2026-08-10T00:15:00Z", c))
}

func TestScoreMalformedDateTreatedAsAbsent(t *testing.T) {
	c := candidate("1", "John Smith", "urine-10", "2026-08-10", model.StatusPending)
	assert.Equal(t, 60, Score("John Smith", "not-a-date", c))

	// Malformed candidate date also degrades to name-only.
	bad := candidate("2", "John Smith", "urine-10", "whenever", model.StatusPending)
	assert.Equal(t, 60, Score("John Smith", "2026-08-10", bad))
}

func TestScoreRoundsSumOnce(t *testing.T) {
	// The fractional name contribution must be rounded together with the
	// date contribution, not independently.
	c := candidate("1", "John Smith", "urine-10", "2026-08-11", model.StatusPending)
	sim := Similarity(SplitName("Jon Smyth"), SplitName("John Smith"))
	expected := int(math.Round(sim*60 + 30))
	assert.Equal(t, expected, Score("Jon Smyth", "2026-08-10", c))
}

func TestScoreBounds(t *testing.T) {
	candidates := []model.CandidateRecord{
		candidate("1", "John Smith", "urine-10", "2026-08-10", model.StatusPending),
		candidate("2", "", "urine-10", "", model.StatusPending),
		candidate("3", "Maria Garcia", "saliva-5", "garbage", model.StatusPending),
	}
	inputs := []struct{ name, date string }{
		{"John Smith", "2026-08-10"},
		{"", ""},
		{"X", "1999-01-01"},
	}
	for _, c := range candidates {
		for _, in := range inputs {
			s := Score(in.name, in.date, c)
			assert.GreaterOrEqual(t, s, 0)
			assert.LessOrEqual(t, s, 100)
		}
	}
}

func TestScoreMonotonicDateDecay(t *testing.T) {
	c := candidate("1", "John Smith", "urine-10", "2026-08-10", model.StatusPending)
	prev := math.MaxInt
	for delta := 0; delta <= 10; delta++ {
		date := fmt.Sprintf("2026-08-%02d", 10+delta)
		s := Score("John Smith", date, c)
		assert.LessOrEqual(t, s, prev, "score must not increase at %d days", delta)
		prev = s
	}
}

func TestRankSortsDescending(t *testing.T) {
	candidates := []model.CandidateRecord{
		candidate("far", "Maria Garcia", "urine-10", "2026-07-01", model.StatusPending),
		candidate("exact", "John Smith", "urine-10", "2026-08-10", model.StatusPending),
		candidate("near", "Jon Smith", "urine-10", "2026-08-11", model.StatusPending),
	}

	results := Rank(candidates, "John Smith", "2026-08-10", "", true)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Candidate.ID)
	assert.Equal(t, 100, results[0].Score)
	assert.Equal(t, "near", results[1].Candidate.ID)
	assert.Equal(t, "far", results[2].Candidate.ID)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	candidates := []model.CandidateRecord{
		candidate("first", "John Smith", "urine-10", "2026-08-10", model.StatusPending),
		candidate("second", "John Smith", "urine-10", "2026-08-10", model.StatusPending),
		candidate("third", "John Smith", "urine-10", "2026-08-10", model.StatusPending),
	}

	results := Rank(candidates, "John Smith", "2026-08-10", "", true)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Candidate.ID)
	assert.Equal(t, "second", results[1].Candidate.ID)
	assert.Equal(t, "third", results[2].Candidate.ID)
}

func TestRankExcludesResultedTestsEvenOnPerfectScore(t *testing.T) {
	candidates := []model.CandidateRecord{
		candidate("screened", "John Smith", "urine-10", "2026-08-10", model.StatusScreened),
		candidate("pending", "Maria Garcia", "urine-10", "2026-07-01", model.StatusPending),
	}

	results := Rank(candidates, "John Smith", "2026-08-10", "", true)
	require.Len(t, results, 1)
	assert.Equal(t, "pending", results[0].Candidate.ID)
}

func TestRankEmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil, "John Smith", "2026-08-10", "", true))
}

func TestRankAppliesTestTypeFilter(t *testing.T) {
	candidates := []model.CandidateRecord{
		candidate("urine", "John Smith", "urine-10", "2026-08-10", model.StatusPending),
		candidate("saliva", "John Smith", "saliva-5", "2026-08-10", model.StatusPending),
	}

	results := Rank(candidates, "John Smith", "2026-08-10", "saliva-5", true)
	require.Len(t, results, 1)
	assert.Equal(t, "saliva", results[0].Candidate.ID)
}
