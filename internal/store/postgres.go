package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/clearpath-health/screening-cli/internal/model"
)

// pgPool defines the minimal pool interface used by PostgresStore.
// Satisfied by *pgxpool.Pool and by pgxmock in tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool pgPool
}

// NewPostgres connects to PostgreSQL using the given connection URL.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool creates a PostgresStore from an existing pool.
func NewPostgresFromPool(pool pgPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS candidates (
	id               TEXT PRIMARY KEY,
	client_id        TEXT NOT NULL,
	display_name     TEXT NOT NULL,
	test_type        TEXT NOT NULL,
	collection_date  TEXT NOT NULL,
	screening_status TEXT NOT NULL DEFAULT 'pending',
	headshot_ref     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS medications (
	client_id                 TEXT NOT NULL,
	name                      TEXT NOT NULL,
	detected_as               TEXT[] NOT NULL,
	required_for_confirmation BOOLEAN NOT NULL DEFAULT FALSE,
	discontinued_at           TIMESTAMPTZ,
	PRIMARY KEY (client_id, name)
);

CREATE TABLE IF NOT EXISTS reviews (
	id                   TEXT PRIMARY KEY,
	candidate_id         TEXT NOT NULL,
	client_id            TEXT NOT NULL,
	donor_name           TEXT NOT NULL,
	test_type            TEXT NOT NULL,
	match_score          INTEGER NOT NULL DEFAULT 0,
	outcome              TEXT NOT NULL,
	auto_accepted        BOOLEAN NOT NULL DEFAULT FALSE,
	expected_positives   TEXT[] NOT NULL DEFAULT '{}',
	unexpected_positives TEXT[] NOT NULL DEFAULT '{}',
	unexpected_negatives TEXT[] NOT NULL DEFAULT '{}',
	status               TEXT NOT NULL,
	decision             TEXT NOT NULL DEFAULT '',
	decision_substances  TEXT[] NOT NULL DEFAULT '{}',
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(screening_status);
CREATE INDEX IF NOT EXISTS idx_candidates_test_type ON candidates(test_type);
CREATE INDEX IF NOT EXISTS idx_medications_client ON medications(client_id);
CREATE INDEX IF NOT EXISTS idx_reviews_status ON reviews(status);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertCandidate(ctx context.Context, c *model.CandidateRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO candidates (id, client_id, display_name, test_type, collection_date, screening_status, headshot_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			display_name = EXCLUDED.display_name,
			test_type = EXCLUDED.test_type,
			collection_date = EXCLUDED.collection_date,
			screening_status = EXCLUDED.screening_status,
			headshot_ref = EXCLUDED.headshot_ref`,
		c.ID, c.ClientID, c.DisplayName, c.TestType, c.CollectionDate, string(c.ScreeningStatus), c.HeadshotRef,
	)
	return eris.Wrap(err, "postgres: upsert candidate")
}

func (s *PostgresStore) ListCandidates(ctx context.Context, filter CandidateFilter) ([]model.CandidateRecord, error) {
	query := `SELECT id, client_id, display_name, test_type, collection_date, screening_status, headshot_ref
		FROM candidates WHERE 1=1`
	var args []any
	argNum := 1

	if filter.TestType != "" {
		query += fmt.Sprintf(" AND test_type = $%d", argNum)
		args = append(args, filter.TestType)
		argNum++
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		query += fmt.Sprintf(" AND screening_status = ANY($%d)", argNum)
		args = append(args, statuses)
		argNum++
	}
	query += " ORDER BY collection_date DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list candidates")
	}
	defer rows.Close()

	var candidates []model.CandidateRecord
	for rows.Next() {
		var c model.CandidateRecord
		var status string
		if err := rows.Scan(&c.ID, &c.ClientID, &c.DisplayName, &c.TestType, &c.CollectionDate, &status, &c.HeadshotRef); err != nil {
			return nil, eris.Wrap(err, "postgres: scan candidate")
		}
		c.ScreeningStatus = model.ScreeningStatus(status)
		candidates = append(candidates, c)
	}
	return candidates, eris.Wrap(rows.Err(), "postgres: iterate candidates")
}

func (s *PostgresStore) UpsertMedication(ctx context.Context, clientID string, m *model.Medication) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO medications (client_id, name, detected_as, required_for_confirmation, discontinued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id, name) DO UPDATE SET
			detected_as = EXCLUDED.detected_as,
			required_for_confirmation = EXCLUDED.required_for_confirmation,
			discontinued_at = EXCLUDED.discontinued_at`,
		clientID, m.Name, m.DetectedAs, m.RequiredForConfirmation, m.DiscontinuedAt,
	)
	return eris.Wrap(err, "postgres: upsert medication")
}

func (s *PostgresStore) MedicationsForClient(ctx context.Context, clientID string) ([]model.Medication, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, detected_as, required_for_confirmation, discontinued_at
		FROM medications WHERE client_id = $1 ORDER BY name`,
		clientID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query medications")
	}
	defer rows.Close()

	var meds []model.Medication
	for rows.Next() {
		var m model.Medication
		var discontinued *time.Time
		if err := rows.Scan(&m.Name, &m.DetectedAs, &m.RequiredForConfirmation, &discontinued); err != nil {
			return nil, eris.Wrap(err, "postgres: scan medication")
		}
		m.DiscontinuedAt = discontinued
		meds = append(meds, m)
	}
	return meds, eris.Wrap(rows.Err(), "postgres: iterate medications")
}

func (s *PostgresStore) SaveReview(ctx context.Context, r *model.ReviewRecord) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO reviews (id, candidate_id, client_id, donor_name, test_type, match_score, outcome,
			auto_accepted, expected_positives, unexpected_positives, unexpected_negatives,
			status, decision, decision_substances, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			decision = EXCLUDED.decision,
			decision_substances = EXCLUDED.decision_substances,
			updated_at = EXCLUDED.updated_at`,
		r.ID, r.CandidateID, r.ClientID, r.DonorName, r.TestType, r.MatchScore, r.Outcome,
		r.AutoAccepted, emptyIfNil(r.ExpectedPositives), emptyIfNil(r.UnexpectedPositives), emptyIfNil(r.UnexpectedNegatives),
		string(r.Status), r.Decision, emptyIfNil(r.DecisionSubstances), r.CreatedAt, r.UpdatedAt,
	)
	return eris.Wrap(err, "postgres: save review")
}

func (s *PostgresStore) GetReview(ctx context.Context, id string) (*model.ReviewRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, candidate_id, client_id, donor_name, test_type, match_score, outcome,
			auto_accepted, expected_positives, unexpected_positives, unexpected_negatives,
			status, decision, decision_substances, created_at, updated_at
		FROM reviews WHERE id = $1`,
		id,
	)
	r, err := scanPGReview(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: review %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get review")
	}
	return r, nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, filter ReviewFilter) ([]model.ReviewRecord, error) {
	query := `SELECT id, candidate_id, client_id, donor_name, test_type, match_score, outcome,
		auto_accepted, expected_positives, unexpected_positives, unexpected_negatives,
		status, decision, decision_substances, created_at, updated_at
		FROM reviews WHERE 1=1`
	var args []any
	argNum := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filter.Status))
		argNum++
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reviews")
	}
	defer rows.Close()

	var reviews []model.ReviewRecord
	for rows.Next() {
		r, err := scanPGReview(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan review")
		}
		reviews = append(reviews, *r)
	}
	return reviews, eris.Wrap(rows.Err(), "postgres: iterate reviews")
}

func scanPGReview(row pgx.Row) (*model.ReviewRecord, error) {
	var r model.ReviewRecord
	var status string
	err := row.Scan(&r.ID, &r.CandidateID, &r.ClientID, &r.DonorName, &r.TestType, &r.MatchScore, &r.Outcome,
		&r.AutoAccepted, &r.ExpectedPositives, &r.UnexpectedPositives, &r.UnexpectedNegatives,
		&status, &r.Decision, &r.DecisionSubstances, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = model.ReviewStatus(status)
	return &r, nil
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
