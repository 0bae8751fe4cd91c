package model

import "time"

// ReviewStatus represents the finalization state of an intake review.
type ReviewStatus string

const (
	ReviewAutoAccepted ReviewStatus = "auto_accepted"
	ReviewPending      ReviewStatus = "pending_review"
	ReviewFinalized    ReviewStatus = "finalized"
	ReviewConfirmation ReviewStatus = "confirmation_requested"
)

// ReviewRecord captures the persisted outcome of a single report intake:
// the matched candidate, the classification verdict, and the eventual
// reviewer decision when the verdict could not be auto-accepted.
type ReviewRecord struct {
	ID                  string       `json:"id"`
	CandidateID         string       `json:"candidate_id"`
	ClientID            string       `json:"client_id"`
	DonorName           string       `json:"donor_name"`
	TestType            string       `json:"test_type"`
	MatchScore          int          `json:"match_score"`
	Outcome             string       `json:"outcome"`
	AutoAccepted        bool         `json:"auto_accepted"`
	ExpectedPositives   []string     `json:"expected_positives"`
	UnexpectedPositives []string     `json:"unexpected_positives"`
	UnexpectedNegatives []string     `json:"unexpected_negatives"`
	Status              ReviewStatus `json:"status"`
	Decision            string       `json:"decision,omitempty"`
	DecisionSubstances  []string     `json:"decision_substances,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at"`
}
