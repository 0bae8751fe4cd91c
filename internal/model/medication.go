package model

import "time"

// Medication is a single prescribed-medication entry on a client's profile.
// DetectedAs lists the substance panel codes this medication shows up as.
// RequiredForConfirmation marks medications whose absence from results is
// clinically critical (e.g., controlled substances the client must test
// positive for); when false, absence is only a warning.
type Medication struct {
	Name                    string     `json:"name"`
	DetectedAs              []string   `json:"detected_as"`
	RequiredForConfirmation bool       `json:"required_for_confirmation"`
	DiscontinuedAt          *time.Time `json:"discontinued_at,omitempty"`
}

// Active reports whether the medication is currently prescribed as of the
// given time.
func (m Medication) Active(asOf time.Time) bool {
	return m.DiscontinuedAt == nil || m.DiscontinuedAt.After(asOf)
}

// ActiveMedications filters a medication list down to entries not yet
// discontinued as of the given time.
func ActiveMedications(meds []Medication, asOf time.Time) []Medication {
	var active []Medication
	for _, m := range meds {
		if m.Active(asOf) {
			active = append(active, m)
		}
	}
	return active
}
