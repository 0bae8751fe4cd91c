// Package classify decides whether a set of detected substances is explained
// by a client's active prescribed medications, and whether the result can be
// auto-accepted or must be held for human review.
package classify

import (
	"sort"
	"strings"

	"github.com/clearpath-health/screening-cli/internal/model"
)

// Outcome is the classification of a screening result.
type Outcome string

const (
	OutcomeNegative                   Outcome = "negative"
	OutcomeExpectedPositive           Outcome = "expected-positive"
	OutcomeUnexpectedPositive         Outcome = "unexpected-positive"
	OutcomeUnexpectedNegativeCritical Outcome = "unexpected-negative-critical"
	OutcomeUnexpectedNegativeWarning  Outcome = "unexpected-negative-warning"
	OutcomeMixedUnexpected            Outcome = "mixed-unexpected"
)

// CodeAlcohol is the substance code a positive breathalyzer reading is
// recorded under.
const CodeAlcohol = "alcohol"

// Verdict is the immutable result of one classification. Every input change
// produces a brand-new Verdict; callers must never patch one in place.
type Verdict struct {
	Outcome             Outcome  `json:"outcome"`
	ExpectedPositives   []string `json:"expected_positives"`
	UnexpectedPositives []string `json:"unexpected_positives"`
	UnexpectedNegatives []string `json:"unexpected_negatives"`
	CriticalNegatives   []string `json:"critical_negatives,omitempty"`
	AutoAccept          bool     `json:"auto_accept"`
}

// Classify partitions detected substances against the expected codes of the
// given medications and applies the outcome decision table.
//
// A breathalyzer reading with any detectable alcohol counts as a detected
// substance, so a "clean" panel with a positive breath test never classifies
// as Negative. Unrecognized codes never match a medication and fall into the
// unexpected positives. The function is total: empty inputs are valid, and
// no error paths exist.
func Classify(detected []string, medications []model.Medication, breath *model.Breathalyzer) Verdict {
	detectedSet := normalizeCodes(detected)
	if breath != nil && breath.Taken && breath.ResultBAC > 0 {
		detectedSet[CodeAlcohol] = struct{}{}
	}

	// Expected codes with critical provenance: a code expected by several
	// medications is critical if any of them requires confirmation.
	expectedCodes := make(map[string]bool)
	for _, m := range medications {
		for _, c := range m.DetectedAs {
			code := normalizeCode(c)
			if code == "" {
				continue
			}
			expectedCodes[code] = expectedCodes[code] || m.RequiredForConfirmation
		}
	}

	var expectedPos, unexpectedPos, unexpectedNeg, criticalNeg []string
	for code := range detectedSet {
		if _, ok := expectedCodes[code]; ok {
			expectedPos = append(expectedPos, code)
		} else {
			unexpectedPos = append(unexpectedPos, code)
		}
	}
	for code, critical := range expectedCodes {
		if _, ok := detectedSet[code]; ok {
			continue
		}
		unexpectedNeg = append(unexpectedNeg, code)
		if critical {
			criticalNeg = append(criticalNeg, code)
		}
	}
	sort.Strings(expectedPos)
	sort.Strings(unexpectedPos)
	sort.Strings(unexpectedNeg)
	sort.Strings(criticalNeg)

	v := Verdict{
		ExpectedPositives:   expectedPos,
		UnexpectedPositives: unexpectedPos,
		UnexpectedNegatives: unexpectedNeg,
		CriticalNegatives:   criticalNeg,
	}

	// Decision table, first match wins.
	switch {
	case len(detectedSet) == 0 && len(expectedCodes) == 0:
		v.Outcome = OutcomeNegative
		v.AutoAccept = true
	case len(unexpectedPos) == 0 && len(unexpectedNeg) == 0:
		v.Outcome = OutcomeExpectedPositive
		v.AutoAccept = true
	case len(unexpectedPos) > 0 && len(unexpectedNeg) > 0:
		v.Outcome = OutcomeMixedUnexpected
	case len(unexpectedPos) > 0:
		v.Outcome = OutcomeUnexpectedPositive
	case len(criticalNeg) > 0:
		v.Outcome = OutcomeUnexpectedNegativeCritical
	default:
		v.Outcome = OutcomeUnexpectedNegativeWarning
		v.AutoAccept = true
	}

	// Safety clamp, independent of branch order: a missed critical
	// medication is never auto-accepted.
	if len(criticalNeg) > 0 {
		v.AutoAccept = false
	}

	return v
}

// normalizeCode lowercases and trims a substance code. Codes are an opaque
// vocabulary; comparison is case-insensitive.
func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// normalizeCodes builds the deduplicated set of non-empty normalized codes.
func normalizeCodes(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if code := normalizeCode(c); code != "" {
			set[code] = struct{}{}
		}
	}
	return set
}
