package match

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/clearpath-health/screening-cli/internal/model"
)

// Point budgets for the composite score. Name evidence dominates; date
// proximity contributes the remainder in tiers.
const (
	namePoints = 60.0

	dateExactPoints  = 40.0
	dateOneDayPoints = 30.0
	dateThreeDays    = 20.0
	dateSevenDays    = 10.0
)

// FilterByStatus removes candidates that are not valid screening targets.
// In the screen workflow, already-resulted tests (screened or complete) are
// excluded; otherwise the list passes through unchanged.
func FilterByStatus(candidates []model.CandidateRecord, screenWorkflow bool) []model.CandidateRecord {
	if !screenWorkflow {
		return candidates
	}
	filtered := make([]model.CandidateRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.ScreeningStatus == model.StatusScreened || c.ScreeningStatus == model.StatusComplete {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// FilterByTestType keeps only candidates whose test type code exactly equals
// the uploaded report's type. An empty type is identity; no default is ever
// fabricated.
func FilterByTestType(candidates []model.CandidateRecord, testType string) []model.CandidateRecord {
	if testType == "" {
		return candidates
	}
	filtered := make([]model.CandidateRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.TestType == testType {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Score computes the 0-100 match score of a candidate against the extracted
// donor name and collection date. Each component applies only when its input
// is present; a malformed date is treated as absent. Rounding happens once,
// on the sum, so boundary values match the upstream wizard exactly.
func Score(extractedName, extractedDate string, candidate model.CandidateRecord) int {
	var total float64

	if strings.TrimSpace(extractedName) != "" {
		sim := Similarity(SplitName(extractedName), SplitName(candidate.DisplayName))
		total += sim * namePoints
	}

	if reportDay, ok := parseDay(extractedDate); ok {
		if candDay, ok := parseDay(candidate.CollectionDate); ok {
			total += datePoints(daysApart(reportDay, candDay))
		}
	}

	return int(math.Round(total))
}

// Rank filters candidates by workflow status and test type, scores the
// remainder, and returns them sorted descending by score. Ties retain the
// relative input order.
func Rank(candidates []model.CandidateRecord, extractedName, extractedDate, testType string, screenWorkflow bool) []model.MatchResult {
	filtered := FilterByTestType(FilterByStatus(candidates, screenWorkflow), testType)

	results := make([]model.MatchResult, 0, len(filtered))
	for _, c := range filtered {
		results = append(results, model.MatchResult{
			Candidate: c,
			Score:     Score(extractedName, extractedDate, c),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// datePoints maps an absolute calendar-day difference to its score tier.
func datePoints(days int) float64 {
	switch {
	case days == 0:
		return dateExactPoints
	case days <= 1:
		return dateOneDayPoints
	case days <= 3:
		return dateThreeDays
	case days <= 7:
		return dateSevenDays
	default:
		return 0
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// parseDay parses an ISO-ish date string and truncates it to the calendar
// day, discarding time-of-day and zone.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// daysApart returns the absolute whole-day difference between two
// day-truncated times.
func daysApart(a, b time.Time) int {
	days := int(a.Sub(b).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
