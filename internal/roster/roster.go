// Package roster parses pending-collection rosters and medication lists
// exported from practice-management systems as CSV or XLSX.
package roster

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/clearpath-health/screening-cli/internal/model"
)

// Candidate roster columns, matched by header name (case-insensitive).
var candidateColumns = []string{"id", "client_id", "display_name", "test_type", "collection_date", "screening_status", "headshot_ref"}

// Medication list columns. detected_as is a semicolon-separated code list.
var medicationColumns = []string{"client_id", "name", "detected_as", "required_for_confirmation", "discontinued_at"}

// MedicationRow pairs a medication with the client it belongs to.
type MedicationRow struct {
	ClientID   string
	Medication model.Medication
}

// ParseCandidates converts header-mapped rows into candidate records.
// The first row must be a header naming at least id, client_id, and
// display_name; unknown columns are ignored.
func ParseCandidates(rows [][]string) ([]model.CandidateRecord, error) {
	if len(rows) == 0 {
		return nil, eris.New("roster: empty candidate roster")
	}
	idx, err := headerIndex(rows[0], candidateColumns, "id", "client_id", "display_name")
	if err != nil {
		return nil, err
	}

	var candidates []model.CandidateRecord
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		c := model.CandidateRecord{
			ID:              cell(row, idx, "id"),
			ClientID:        cell(row, idx, "client_id"),
			DisplayName:     cell(row, idx, "display_name"),
			TestType:        cell(row, idx, "test_type"),
			CollectionDate:  cell(row, idx, "collection_date"),
			ScreeningStatus: model.ScreeningStatus(cell(row, idx, "screening_status")),
			HeadshotRef:     cell(row, idx, "headshot_ref"),
		}
		if c.ID == "" || c.ClientID == "" {
			return nil, eris.Errorf("roster: row %d missing id or client_id", i+2)
		}
		if c.ScreeningStatus == "" {
			c.ScreeningStatus = model.StatusPending
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// ParseMedications converts header-mapped rows into per-client medications.
func ParseMedications(rows [][]string) ([]MedicationRow, error) {
	if len(rows) == 0 {
		return nil, eris.New("roster: empty medication list")
	}
	idx, err := headerIndex(rows[0], medicationColumns, "client_id", "name", "detected_as")
	if err != nil {
		return nil, err
	}

	var meds []MedicationRow
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		clientID := cell(row, idx, "client_id")
		name := cell(row, idx, "name")
		if clientID == "" || name == "" {
			return nil, eris.Errorf("roster: row %d missing client_id or name", i+2)
		}

		m := model.Medication{Name: name}
		for _, code := range strings.Split(cell(row, idx, "detected_as"), ";") {
			if code = strings.TrimSpace(code); code != "" {
				m.DetectedAs = append(m.DetectedAs, code)
			}
		}
		if raw := cell(row, idx, "required_for_confirmation"); raw != "" {
			required, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "roster: row %d required_for_confirmation", i+2)
			}
			m.RequiredForConfirmation = required
		}
		if raw := cell(row, idx, "discontinued_at"); raw != "" {
			t, err := parseTimestamp(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "roster: row %d discontinued_at", i+2)
			}
			m.DiscontinuedAt = &t
		}

		meds = append(meds, MedicationRow{ClientID: clientID, Medication: m})
	}
	return meds, nil
}

// headerIndex maps known column names to their positions, requiring that the
// named columns are present.
func headerIndex(header []string, known []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(known))
	for pos, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, k := range known {
			if name == k {
				idx[k] = pos
				break
			}
		}
	}
	for _, r := range required {
		if _, ok := idx[r]; !ok {
			return nil, eris.Errorf("roster: missing required column %q", r)
		}
	}
	return idx, nil
}

func cell(row []string, idx map[string]int, column string) string {
	pos, ok := idx[column]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("roster: unparseable timestamp %q", s)
}
