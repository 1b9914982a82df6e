package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadminer/internal/db"
	"github.com/sells-group/leadminer/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	input       TEXT NOT NULL,
	source_file TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL DEFAULT 0,
	lead_count  INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'queued',
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	lead_key    TEXT NOT NULL,
	position    INTEGER NOT NULL,
	data        JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS tracking (
	lead_key     TEXT PRIMARY KEY,
	account_name TEXT NOT NULL,
	status       TEXT NOT NULL,
	note         TEXT NOT NULL DEFAULT '',
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_leads_analysis_id ON leads(analysis_id);
CREATE INDEX IF NOT EXISTS idx_leads_lead_key ON leads(lead_key);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateAnalysis(ctx context.Context, input, sourceFile string, rowCount int) (*model.Analysis, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, input, source_file, row_count, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input, sourceFile, rowCount, string(model.AnalysisStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert analysis")
	}

	return &model.Analysis{
		ID:         id,
		Input:      input,
		SourceFile: sourceFile,
		RowCount:   rowCount,
		Status:     model.AnalysisStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update analysis status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("analysis not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) CompleteAnalysis(ctx context.Context, id string, leads []model.MinedLead) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, lead_count = $2, updated_at = $3 WHERE id = $4`,
		string(model.AnalysisStatusComplete), len(leads), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("analysis not found: %s", id)
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM leads WHERE analysis_id = $1`, id); err != nil {
		return eris.Wrapf(err, "postgres: clear leads for %s", id)
	}
	for i, l := range leads {
		data, err := json.Marshal(l)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal lead")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO leads (id, analysis_id, lead_key, position, data) VALUES ($1, $2, $3, $4, $5)`,
			uuid.New().String(), id, l.Key(), i, data,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert lead for %s", id)
		}
	}
	return nil
}

func (s *PostgresStore) FailAnalysis(ctx context.Context, id string, cause string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analyses SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.AnalysisStatusFailed), cause, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("analysis not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	var a model.Analysis
	err := s.pool.QueryRow(ctx,
		`SELECT id, input, source_file, row_count, lead_count, status, error, created_at, updated_at
		 FROM analyses WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Input, &a.SourceFile, &a.RowCount, &a.LeadCount,
		&a.Status, &a.Error, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get analysis %s", id)
	}
	return &a, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error) {
	query := `SELECT id, input, source_file, row_count, lead_count, status, error, created_at, updated_at
	          FROM analyses WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		var a model.Analysis
		if err := rows.Scan(&a.ID, &a.Input, &a.SourceFile, &a.RowCount, &a.LeadCount,
			&a.Status, &a.Error, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func (s *PostgresStore) ListLeads(ctx context.Context, analysisID string) ([]model.MinedLead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM leads WHERE analysis_id = $1 ORDER BY position ASC`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list leads for %s", analysisID)
	}
	defer rows.Close()

	var leads []model.MinedLead
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var l model.MinedLead
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpsertTracking(ctx context.Context, t model.Tracking) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tracking (lead_key, account_name, status, note, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (lead_key) DO UPDATE SET account_name = $2, status = $3, note = $4, updated_at = $5`,
		t.LeadKey, t.AccountName, string(t.Status), t.Note, now,
	)
	return eris.Wrapf(err, "postgres: upsert tracking %s", t.LeadKey)
}

func (s *PostgresStore) GetTracking(ctx context.Context, leadKey string) (*model.Tracking, error) {
	var t model.Tracking
	err := s.pool.QueryRow(ctx,
		`SELECT lead_key, account_name, status, note, updated_at FROM tracking WHERE lead_key = $1`,
		leadKey,
	).Scan(&t.LeadKey, &t.AccountName, &t.Status, &t.Note, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get tracking")
	}
	return &t, nil
}

func (s *PostgresStore) ListTracking(ctx context.Context) ([]model.Tracking, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lead_key, account_name, status, note, updated_at FROM tracking ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list tracking")
	}
	defer rows.Close()

	var out []model.Tracking
	for rows.Next() {
		var t model.Tracking
		if err := rows.Scan(&t.LeadKey, &t.AccountName, &t.Status, &t.Note, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan tracking")
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list tracking iterate")
}
