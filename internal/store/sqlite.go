package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/clearpath-health/screening-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS candidates (
	id               TEXT PRIMARY KEY,
	client_id        TEXT NOT NULL,
	display_name     TEXT NOT NULL,
	test_type        TEXT NOT NULL,
	collection_date  TEXT NOT NULL,
	screening_status TEXT NOT NULL DEFAULT 'pending',
	headshot_ref     TEXT
);

CREATE TABLE IF NOT EXISTS medications (
	client_id                 TEXT NOT NULL,
	name                      TEXT NOT NULL,
	detected_as               TEXT NOT NULL,
	required_for_confirmation INTEGER NOT NULL DEFAULT 0,
	discontinued_at           DATETIME,
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
	auto_accepted        INTEGER NOT NULL DEFAULT 0,
	expected_positives   TEXT NOT NULL,
	unexpected_positives TEXT NOT NULL,
	unexpected_negatives TEXT NOT NULL,
	status               TEXT NOT NULL,
	decision             TEXT,
	decision_substances  TEXT,
	created_at           DATETIME NOT NULL,
	updated_at           DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(screening_status);
CREATE INDEX IF NOT EXISTS idx_candidates_test_type ON candidates(test_type);
CREATE INDEX IF NOT EXISTS idx_medications_client ON medications(client_id);
CREATE INDEX IF NOT EXISTS idx_reviews_status ON reviews(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCandidate(ctx context.Context, c *model.CandidateRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidates (id, client_id, display_name, test_type, collection_date, screening_status, headshot_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			client_id = excluded.client_id,
			display_name = excluded.display_name,
			test_type = excluded.test_type,
			collection_date = excluded.collection_date,
			screening_status = excluded.screening_status,
			headshot_ref = excluded.headshot_ref`,
		c.ID, c.ClientID, c.DisplayName, c.TestType, c.CollectionDate, string(c.ScreeningStatus), c.HeadshotRef,
	)
	return eris.Wrap(err, "sqlite: upsert candidate")
}

func (s *SQLiteStore) ListCandidates(ctx context.Context, filter CandidateFilter) ([]model.CandidateRecord, error) {
	query := `SELECT id, client_id, display_name, test_type, collection_date, screening_status, COALESCE(headshot_ref, '')
		FROM candidates WHERE 1=1`
	var args []any

	if filter.TestType != "" {
		query += " AND test_type = ?"
		args = append(args, filter.TestType)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		query += fmt.Sprintf(" AND screening_status IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY collection_date DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list candidates")
	}
	defer rows.Close()

	var candidates []model.CandidateRecord
	for rows.Next() {
		var c model.CandidateRecord
		var status string
		if err := rows.Scan(&c.ID, &c.ClientID, &c.DisplayName, &c.TestType, &c.CollectionDate, &status, &c.HeadshotRef); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan candidate")
		}
		c.ScreeningStatus = model.ScreeningStatus(status)
		candidates = append(candidates, c)
	}
	return candidates, eris.Wrap(rows.Err(), "sqlite: iterate candidates")
}

func (s *SQLiteStore) UpsertMedication(ctx context.Context, clientID string, m *model.Medication) error {
	detectedJSON, err := json.Marshal(m.DetectedAs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal detected_as")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO medications (client_id, name, detected_as, required_for_confirmation, discontinued_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (client_id, name) DO UPDATE SET
			detected_as = excluded.detected_as,
			required_for_confirmation = excluded.required_for_confirmation,
			discontinued_at = excluded.discontinued_at`,
		clientID, m.Name, string(detectedJSON), boolToInt(m.RequiredForConfirmation), m.DiscontinuedAt,
	)
	return eris.Wrap(err, "sqlite: upsert medication")
}

func (s *SQLiteStore) MedicationsForClient(ctx context.Context, clientID string) ([]model.Medication, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, detected_as, required_for_confirmation, discontinued_at
		FROM medications WHERE client_id = ? ORDER BY name`,
		clientID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query medications")
	}
	defer rows.Close()

	var meds []model.Medication
	for rows.Next() {
		var m model.Medication
		var detectedJSON string
		var required int
		var discontinued sql.NullTime
		if err := rows.Scan(&m.Name, &detectedJSON, &required, &discontinued); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan medication")
		}
		if err := json.Unmarshal([]byte(detectedJSON), &m.DetectedAs); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal detected_as")
		}
		m.RequiredForConfirmation = required != 0
		if discontinued.Valid {
			t := discontinued.Time
			m.DiscontinuedAt = &t
		}
		meds = append(meds, m)
	}
	return meds, eris.Wrap(rows.Err(), "sqlite: iterate medications")
}

func (s *SQLiteStore) SaveReview(ctx context.Context, r *model.ReviewRecord) error {
	expected, unexpectedPos, unexpectedNeg, decisionSubs, err := marshalReviewLists(r)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, candidate_id, client_id, donor_name, test_type, match_score, outcome,
			auto_accepted, expected_positives, unexpected_positives, unexpected_negatives,
			status, decision, decision_substances, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			status = excluded.status,
			decision = excluded.decision,
			decision_substances = excluded.decision_substances,
			updated_at = excluded.updated_at`,
		r.ID, r.CandidateID, r.ClientID, r.DonorName, r.TestType, r.MatchScore, r.Outcome,
		boolToInt(r.AutoAccepted), expected, unexpectedPos, unexpectedNeg,
		string(r.Status), r.Decision, decisionSubs, r.CreatedAt, r.UpdatedAt,
	)
	return eris.Wrap(err, "sqlite: save review")
}

func (s *SQLiteStore) GetReview(ctx context.Context, id string) (*model.ReviewRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, candidate_id, client_id, donor_name, test_type, match_score, outcome,
			auto_accepted, expected_positives, unexpected_positives, unexpected_negatives,
			status, COALESCE(decision, ''), COALESCE(decision_substances, '[]'), created_at, updated_at
		FROM reviews WHERE id = ?`,
		id,
	)
	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: review %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get review")
	}
	return r, nil
}

func (s *SQLiteStore) ListReviews(ctx context.Context, filter ReviewFilter) ([]model.ReviewRecord, error) {
	query := `SELECT id, candidate_id, client_id, donor_name, test_type, match_score, outcome,
		auto_accepted, expected_positives, unexpected_positives, unexpected_negatives,
		status, COALESCE(decision, ''), COALESCE(decision_substances, '[]'), created_at, updated_at
		FROM reviews WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reviews")
	}
	defer rows.Close()

	var reviews []model.ReviewRecord
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan review")
		}
		reviews = append(reviews, *r)
	}
	return reviews, eris.Wrap(rows.Err(), "sqlite: iterate reviews")
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (*model.ReviewRecord, error) {
	var r model.ReviewRecord
	var autoAccepted int
	var status string
	var expected, unexpectedPos, unexpectedNeg, decisionSubs string

	err := row.Scan(&r.ID, &r.CandidateID, &r.ClientID, &r.DonorName, &r.TestType, &r.MatchScore, &r.Outcome,
		&autoAccepted, &expected, &unexpectedPos, &unexpectedNeg,
		&status, &r.Decision, &decisionSubs, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.AutoAccepted = autoAccepted != 0
	r.Status = model.ReviewStatus(status)
	for _, pair := range []struct {
		raw  string
		dest *[]string
	}{
		{expected, &r.ExpectedPositives},
		{unexpectedPos, &r.UnexpectedPositives},
		{unexpectedNeg, &r.UnexpectedNegatives},
		{decisionSubs, &r.DecisionSubstances},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dest); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal review list")
		}
	}
	return &r, nil
}

func marshalReviewLists(r *model.ReviewRecord) (expected, unexpectedPos, unexpectedNeg, decisionSubs string, err error) {
	out := make([]string, 4)
	for i, list := range [][]string{r.ExpectedPositives, r.UnexpectedPositives, r.UnexpectedNegatives, r.DecisionSubstances} {
		if list == nil {
			list = []string{}
		}
		data, merr := json.Marshal(list)
		if merr != nil {
			return "", "", "", "", eris.Wrap(merr, "sqlite: marshal review list")
		}
		out[i] = string(data)
	}
	return out[0], out[1], out[2], out[3], nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
