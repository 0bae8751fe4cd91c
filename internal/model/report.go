package model

// ScreeningStatus represents the workflow state of a collection record.
type ScreeningStatus string

const (
	StatusPending   ScreeningStatus = "pending"
	StatusScheduled ScreeningStatus = "scheduled"
	StatusCollected ScreeningStatus = "collected"
	StatusScreened  ScreeningStatus = "screened"
	StatusComplete  ScreeningStatus = "complete"
)

// ExtractedReport holds the data pulled out of an uploaded lab report.
// Extraction itself happens upstream; the engine only consumes the result.
type ExtractedReport struct {
	DonorName          string        `json:"donor_name,omitempty"`
	CollectionDate     string        `json:"collection_date,omitempty"` // ISO 8601
	TestType           string        `json:"test_type,omitempty"`
	DetectedSubstances []string      `json:"detected_substances"`
	Breathalyzer       *Breathalyzer `json:"breathalyzer,omitempty"`
}

// Breathalyzer holds an optional breath-alcohol reading taken at collection.
type Breathalyzer struct {
	Taken     bool    `json:"taken"`
	ResultBAC float64 `json:"result_bac,omitempty"`
}

// CandidateRecord is a read-only snapshot of a pending collection or client
// entry supplied by the data layer. The engine never writes back into it.
type CandidateRecord struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	DisplayName     string          `json:"display_name"`
	TestType        string          `json:"test_type"`
	CollectionDate  string          `json:"collection_date"` // ISO 8601
	ScreeningStatus ScreeningStatus `json:"screening_status"`
	HeadshotRef     string          `json:"headshot_ref,omitempty"`
}

// MatchResult pairs a candidate with its 0-100 match score.
type MatchResult struct {
	Candidate CandidateRecord `json:"candidate"`
	Score     int             `json:"score"`
}
