package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadminer/internal/model"
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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	input       TEXT NOT NULL,
	source_file TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL DEFAULT 0,
	lead_count  INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'queued',
	error       TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id          TEXT PRIMARY KEY,
	analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
	lead_key    TEXT NOT NULL,
	position    INTEGER NOT NULL,
	data        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tracking (
	lead_key     TEXT PRIMARY KEY,
	account_name TEXT NOT NULL,
	status       TEXT NOT NULL,
	note         TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_analyses_status ON analyses(status);
CREATE INDEX IF NOT EXISTS idx_leads_analysis_id ON leads(analysis_id);
CREATE INDEX IF NOT EXISTS idx_leads_lead_key ON leads(lead_key);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, input, sourceFile string, rowCount int) (*model.Analysis, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, input, source_file, row_count, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, input, sourceFile, rowCount, string(model.AnalysisStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert analysis")
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

func (s *SQLiteStore) UpdateAnalysisStatus(ctx context.Context, id string, status model.AnalysisStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update analysis status %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

func (s *SQLiteStore) CompleteAnalysis(ctx context.Context, id string, leads []model.MinedLead) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin complete analysis")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE analyses SET status = ?, lead_count = ?, updated_at = ? WHERE id = ?`,
		string(model.AnalysisStatusComplete), len(leads), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete analysis %s", id)
	}
	if err := checkRowsAffected(res, "analysis", id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM leads WHERE analysis_id = ?`, id); err != nil {
		return eris.Wrapf(err, "sqlite: clear leads for %s", id)
	}
	for i, l := range leads {
		data, err := json.Marshal(l)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal lead")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO leads (id, analysis_id, lead_key, position, data) VALUES (?, ?, ?, ?, ?)`,
			uuid.New().String(), id, l.Key(), i, string(data),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert lead for %s", id)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit complete analysis")
}

func (s *SQLiteStore) FailAnalysis(ctx context.Context, id string, cause string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE analyses SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.AnalysisStatusFailed), cause, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail analysis %s", id)
	}
	return checkRowsAffected(res, "analysis", id)
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*model.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, source_file, row_count, lead_count, status, error, created_at, updated_at
		 FROM analyses WHERE id = ?`,
		id,
	)
	return scanAnalysis(row)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]model.Analysis, error) {
	query := `SELECT id, input, source_file, row_count, lead_count, status, error, created_at, updated_at
	          FROM analyses WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func (s *SQLiteStore) ListLeads(ctx context.Context, analysisID string) ([]model.MinedLead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM leads WHERE analysis_id = ? ORDER BY position ASC`,
		analysisID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list leads for %s", analysisID)
	}
	defer rows.Close()

	var leads []model.MinedLead
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var l model.MinedLead
		if err := json.Unmarshal([]byte(data), &l); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpsertTracking(ctx context.Context, t model.Tracking) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracking (lead_key, account_name, status, note, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (lead_key) DO UPDATE SET account_name = ?, status = ?, note = ?, updated_at = ?`,
		t.LeadKey, t.AccountName, string(t.Status), t.Note, now,
		t.AccountName, string(t.Status), t.Note, now,
	)
	return eris.Wrapf(err, "sqlite: upsert tracking %s", t.LeadKey)
}

func (s *SQLiteStore) GetTracking(ctx context.Context, leadKey string) (*model.Tracking, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT lead_key, account_name, status, note, updated_at FROM tracking WHERE lead_key = ?`,
		leadKey,
	)

	var t model.Tracking
	err := row.Scan(&t.LeadKey, &t.AccountName, &t.Status, &t.Note, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get tracking")
	}
	return &t, nil
}

func (s *SQLiteStore) ListTracking(ctx context.Context) ([]model.Tracking, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lead_key, account_name, status, note, updated_at FROM tracking ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list tracking")
	}
	defer rows.Close()

	var out []model.Tracking
	for rows.Next() {
		var t model.Tracking
		if err := rows.Scan(&t.LeadKey, &t.AccountName, &t.Status, &t.Note, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan tracking")
		}
		out = append(out, t)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list tracking iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanAnalysis(row scannable) (*model.Analysis, error) {
	var a model.Analysis
	err := row.Scan(&a.ID, &a.Input, &a.SourceFile, &a.RowCount, &a.LeadCount,
		&a.Status, &a.Error, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("analysis not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan analysis")
	}
	return &a, nil
}
