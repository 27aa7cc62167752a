package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/parcelops/pickup-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// preparedStatements lists queries to prepare on each new connection for
// the most frequent store operations.
var preparedStatements = map[string]string{
	"insert_run":        `INSERT INTO runs (id, source, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_run":      `UPDATE runs SET status = $1, totals = $2, updated_at = $3 WHERE id = $4`,
	"fail_run":          `UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_run":           `SELECT id, source, status, totals, error, created_at, updated_at FROM runs WHERE id = $1`,
	"insert_row_result": `INSERT INTO row_results (id, run_id, row_index, management_no, name, auto_safe, confidence, resolution, result, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
	"list_row_results":  `SELECT result FROM row_results WHERE run_id = $1 ORDER BY row_index`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	totals     JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS row_results (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL REFERENCES runs(id),
	row_index     INTEGER NOT NULL,
	management_no TEXT NOT NULL,
	name          TEXT NOT NULL,
	auto_safe     BOOLEAN NOT NULL,
	confidence    TEXT NOT NULL,
	resolution    TEXT NOT NULL,
	result        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_row_results_run_id ON row_results(run_id);
CREATE INDEX IF NOT EXISTS idx_row_results_auto_safe ON row_results(run_id, auto_safe);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, source string) (*model.BatchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, source, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, source, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.BatchRun{
		ID:        id,
		Source:    source,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, totals model.RunTotals) error {
	totalsJSON, err := json.Marshal(totals)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal totals")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, totals = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusComplete), string(totalsJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), reason, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.BatchRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source, status, totals, error, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)

	var r model.BatchRun
	var totalsJSON, errMsg *string
	err := row.Scan(&r.ID, &r.Source, &r.Status, &totalsJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	if totalsJSON != nil && *totalsJSON != "" {
		if err := json.Unmarshal([]byte(*totalsJSON), &r.Totals); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal totals")
		}
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.BatchRun, error) {
	query := `SELECT id, source, status, totals, error, created_at, updated_at FROM runs WHERE 1=1`
	var args []any
	arg := 0

	if filter.Status != "" {
		arg++
		query += ` AND status = $` + itoa(arg)
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	arg++
	query += ` LIMIT $` + itoa(arg)
	args = append(args, limit)

	if filter.Offset > 0 {
		arg++
		query += ` OFFSET $` + itoa(arg)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.BatchRun
	for rows.Next() {
		var r model.BatchRun
		var totalsJSON, errMsg *string
		if err := rows.Scan(&r.ID, &r.Source, &r.Status, &totalsJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if totalsJSON != nil && *totalsJSON != "" {
			if err := json.Unmarshal([]byte(*totalsJSON), &r.Totals); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal totals")
			}
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveRowResults(ctx context.Context, runID string, results []model.RowResult) error {
	now := time.Now().UTC()
	for _, r := range results {
		resultJSON, err := json.Marshal(r)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal row result")
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO row_results (id, run_id, row_index, management_no, name, auto_safe, confidence, resolution, result, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New().String(), runID, r.Row.RowIndex, r.Row.ManagementNo, r.Row.Name,
			r.AutoSafe, string(r.Parsed.Confidence), string(r.Resolution.State), string(resultJSON), now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert row result %d", r.Row.RowIndex)
		}
	}
	return nil
}

func (s *PostgresStore) ListRowResults(ctx context.Context, runID string) ([]model.RowResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT result FROM row_results WHERE run_id = $1 ORDER BY row_index`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list row results %s", runID)
	}
	defer rows.Close()

	var results []model.RowResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row result")
		}
		var r model.RowResult
		if err := json.Unmarshal([]byte(resultJSON), &r); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal row result")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "postgres: list row results iterate")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
