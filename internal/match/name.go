// Package match ranks pending collection records against data extracted
// from an uploaded lab report using weighted name and date similarity.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name is a parsed donor or client name.
type Name struct {
	First  string
	Middle string
	Last   string
}

// Component weights. Last names are more discriminating than first names in
// this domain; the middle component only counts when both sides supply one.
const (
	firstWeight  = 0.4
	lastWeight   = 0.5
	middleWeight = 0.1
)

// SplitName derives a Name from a free-text full name by splitting on
// whitespace. A single token is treated as a last name.
func SplitName(full string) Name {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return Name{}
	case 1:
		return Name{Last: tokens[0]}
	case 2:
		return Name{First: tokens[0], Last: tokens[1]}
	default:
		return Name{
			First:  tokens[0],
			Middle: strings.Join(tokens[1:len(tokens)-1], " "),
			Last:   tokens[len(tokens)-1],
		}
	}
}

// Similarity computes a normalized [0,1] similarity between two names as a
// weighted combination of per-token Jaro-Winkler scores. Comparison is
// case-insensitive and diacritic-insensitive. Empty components contribute
// zero rather than failing; a missing middle name on either side is never
// a penalty. Symmetric: Similarity(a, b) == Similarity(b, a).
func Similarity(a, b Name) float64 {
	aFirst, bFirst := foldName(a.First), foldName(b.First)
	aLast, bLast := foldName(a.Last), foldName(b.Last)
	aMiddle, bMiddle := foldName(a.Middle), foldName(b.Middle)

	var score, weightSum float64

	if aFirst != "" || bFirst != "" {
		weightSum += firstWeight
		if aFirst != "" && bFirst != "" {
			score += firstWeight * jaroWinkler(aFirst, bFirst)
		}
	}
	if aLast != "" || bLast != "" {
		weightSum += lastWeight
		if aLast != "" && bLast != "" {
			score += lastWeight * jaroWinkler(aLast, bLast)
		}
	}
	if aMiddle != "" && bMiddle != "" {
		weightSum += middleWeight
		score += middleWeight * middleSimilarity(aMiddle, bMiddle)
	}

	if weightSum == 0 {
		return 0
	}
	return score / weightSum
}

// middleSimilarity compares middle names, falling back to initial comparison
// when either side carries only an initial ("Q" vs "Quentin").
func middleSimilarity(a, b string) float64 {
	if len(a) == 1 || len(b) == 1 {
		if a[0] == b[0] {
			return 1.0
		}
		return 0
	}
	return jaroWinkler(a, b)
}

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases, collapses whitespace, and strips diacritics so that
// "José" and "jose" compare equal.
func foldName(s string) string {
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.Join(strings.Fields(folded), " "))
}

// jaroWinkler computes Jaro-Winkler similarity between two non-empty strings.
func jaroWinkler(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0
	}

	matchDistance := max(len(s1), len(s2))/2 - 1
	if matchDistance < 0 {
		matchDistance = 0
	}

	s1Matches := make([]bool, len(s1))
	s2Matches := make([]bool, len(s2))

	matches := 0
	transpositions := 0

	for i := range s1 {
		start := max(0, i-matchDistance)
		end := min(i+matchDistance+1, len(s2))
		for j := start; j < end; j++ {
			if s2Matches[j] || s1[i] != s2[j] {
				continue
			}
			s1Matches[i] = true
			s2Matches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0
	}

	k := 0
	for i := range s1 {
		if !s1Matches[i] {
			continue
		}
		for ; !s2Matches[k]; k++ {
		}
		if s1[i] != s2[k] {
			transpositions++
		}
		k++
	}
	transpositions /= 2

	jaro := (float64(matches)/float64(len(s1)) +
		float64(matches)/float64(len(s2)) +
		float64(matches-transpositions)/float64(matches)) / 3

	prefix := 0
	for i := 0; i < min(4, min(len(s1), len(s2))); i++ {
		if s1[i] == s2[i] {
			prefix++
		} else {
			break
		}
	}

	return jaro + float64(prefix)*0.1*(1-jaro)
}
