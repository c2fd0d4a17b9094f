// Package sqlite archives freeze-thaw runs in a SQLite database
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/freezethaw/internal/storage"
	"github.com/chrissnell/freezethaw/pkg/climate"
	"github.com/chrissnell/freezethaw/pkg/trend"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
  id         TEXT    PRIMARY KEY,
  created_at TEXT    NOT NULL,
  input      TEXT    NOT NULL,
  dense      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS monthly_counts (
  run_id TEXT    NOT NULL,
  year   INTEGER NOT NULL,
  month  INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
  count  INTEGER NOT NULL CHECK (count >= 0),
  PRIMARY KEY (run_id, year, month),
  FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS trends (
  run_id    TEXT    NOT NULL,
  scope     TEXT    NOT NULL,
  points    INTEGER NOT NULL,
  slope     REAL    NOT NULL,
  intercept REAL    NOT NULL,
  r_squared REAL,
  PRIMARY KEY (run_id, scope),
  FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

// ErrNoRuns is returned by LatestRun on an empty archive
var ErrNoRuns = errors.New("archive holds no runs")

// Fixed-width so that created_at sorts chronologically as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Archive is a storage.Archive backed by SQLite
type Archive struct {
	db     *sql.DB
	dbPath string
	logger *zap.SugaredLogger
}

var _ storage.Archive = (*Archive)(nil)

// Open opens (creating if needed) the archive at dbPath and applies the schema
func Open(ctx context.Context, dbPath string, logger *zap.SugaredLogger) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", dbPath, err)
	}

	// A single connection keeps ":memory:" databases coherent across calls
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database %s: %w", dbPath, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply archive schema: %w", err)
	}

	return &Archive{db: db, dbPath: dbPath, logger: logger}, nil
}

// SaveRun stores run and its counts and trends in one transaction. A run
// without an ID is given a fresh UUID, and a zero CreatedAt is set to now.
func (a *Archive) SaveRun(ctx context.Context, run *storage.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, input, dense) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), run.Input, run.Dense)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	countStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO monthly_counts (run_id, year, month, count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare count insert: %w", err)
	}
	defer countStmt.Close()

	for _, c := range run.Counts {
		if _, err := countStmt.ExecContext(ctx, run.ID, c.Year, c.Month, c.Count); err != nil {
			return fmt.Errorf("failed to insert count %d-%02d: %w", c.Year, c.Month, err)
		}
	}

	for _, tr := range run.Trends {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO trends (run_id, scope, points, slope, intercept, r_squared) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, tr.Scope, tr.Points, tr.Slope, tr.Intercept, nullable(tr.RSquared))
		if err != nil {
			return fmt.Errorf("failed to insert %s trend: %w", tr.Scope, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}

	a.logger.Debugw("archived run", "run", run.ID, "counts", len(run.Counts), "trends", len(run.Trends), "db", a.dbPath)
	return nil
}

// LatestRun loads the most recently created run
func (a *Archive) LatestRun(ctx context.Context) (*storage.Run, error) {
	var run storage.Run
	var createdAt string

	err := a.db.QueryRowContext(ctx,
		`SELECT id, created_at, input, dense FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&run.ID, &createdAt, &run.Input, &run.Dense)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	run.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at of run %s: %w", run.ID, err)
	}

	if run.Counts, err = a.counts(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Trends, err = a.trends(ctx, run.ID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (a *Archive) counts(ctx context.Context, runID string) ([]climate.MonthlyCount, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT year, month, count FROM monthly_counts WHERE run_id = ? ORDER BY year, month`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query counts of run %s: %w", runID, err)
	}
	defer rows.Close()

	counts := []climate.MonthlyCount{}
	for rows.Next() {
		var c climate.MonthlyCount
		if err := rows.Scan(&c.Year, &c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count row: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (a *Archive) trends(ctx context.Context, runID string) ([]storage.TrendRow, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT scope, points, slope, intercept, r_squared FROM trends WHERE run_id = ? ORDER BY scope`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends of run %s: %w", runID, err)
	}
	defer rows.Close()

	var trends []storage.TrendRow
	for rows.Next() {
		var tr storage.TrendRow
		var rSquared sql.NullFloat64
		if err := rows.Scan(&tr.Scope, &tr.Points, &tr.Slope, &tr.Intercept, &rSquared); err != nil {
			return nil, fmt.Errorf("failed to scan trend row: %w", err)
		}
		tr.RSquared = trend.NullFloat64{Float64: rSquared.Float64, Valid: rSquared.Valid}
		trends = append(trends, tr)
	}
	return trends, rows.Err()
}

func nullable(v trend.NullFloat64) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

// Close closes the underlying database
func (a *Archive) Close() error {
	return a.db.Close()
}
