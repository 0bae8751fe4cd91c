// Package store persists pending collection records, client medication
// profiles, and intake review records.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/clearpath-health/screening-cli/internal/config"
	"github.com/clearpath-health/screening-cli/internal/model"
	"github.com/clearpath-health/screening-cli/internal/retry"
)

// CandidateFilter specifies criteria for listing collection records.
type CandidateFilter struct {
	TestType string                  `json:"test_type,omitempty"`
	Statuses []model.ScreeningStatus `json:"statuses,omitempty"`
	Limit    int                     `json:"limit,omitempty"`
}

// ReviewFilter specifies criteria for listing reviews.
type ReviewFilter struct {
	Status model.ReviewStatus `json:"status,omitempty"`
	Limit  int                `json:"limit,omitempty"`
}

// Store defines the persistence interface for the intake wizard.
type Store interface {
	// Candidates
	UpsertCandidate(ctx context.Context, c *model.CandidateRecord) error
	ListCandidates(ctx context.Context, filter CandidateFilter) ([]model.CandidateRecord, error)

	// Medications
	UpsertMedication(ctx context.Context, clientID string, m *model.Medication) error
	MedicationsForClient(ctx context.Context, clientID string) ([]model.Medication, error)

	// Reviews
	SaveReview(ctx context.Context, r *model.ReviewRecord) error
	GetReview(ctx context.Context, id string) (*model.ReviewRecord, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]model.ReviewRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New creates a Store for the configured driver.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.SQLitePath)
	case "postgres":
		// The database may still be coming up when the server boots.
		return retry.DoVal(ctx, retry.Config{}, "store: connect postgres",
			func(ctx context.Context) (Store, error) {
				return NewPostgres(ctx, cfg.DatabaseURL)
			})
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
