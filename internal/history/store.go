// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists run summaries in a local SQLite database. The
// store is opt-in: with no configured path, a conversion run leaves no
// state behind.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docpress/pkg/types"
)

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database at path, creating the
// schema and any missing parent directories.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			input_root TEXT NOT NULL,
			output_root TEXT NOT NULL,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			started TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS failures (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			source_path TEXT NOT NULL,
			diagnostic TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_run_id ON failures(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one finalized run report, summary row plus one row per
// failure, in a single transaction.
func (s *Store) Record(ctx context.Context, report types.RunReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, input_root, output_root, total, succeeded, failed, skipped, started, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.InputRoot, report.OutputRoot,
		report.Total, report.Succeeded, report.Failed, report.Skipped,
		report.Started.UTC().Format(time.RFC3339Nano),
		report.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", report.RunID, err)
	}

	for _, f := range report.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, source_path, diagnostic) VALUES (?, ?, ?)`,
			report.RunID, f.SourcePath, f.Diagnostic,
		); err != nil {
			return fmt.Errorf("inserting failure for %s: %w", f.SourcePath, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit runs, newest first, with their failures
// attached.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.RunReport, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, input_root, output_root, total, succeeded, failed, skipped, started, duration_ms
		 FROM runs ORDER BY started DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var reports []types.RunReport
	for rows.Next() {
		var r types.RunReport
		var started string
		var durationMS int64
		if err := rows.Scan(&r.RunID, &r.InputRoot, &r.OutputRoot,
			&r.Total, &r.Succeeded, &r.Failed, &r.Skipped, &started, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.Started = ts
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range reports {
		failures, err := s.failuresFor(ctx, reports[i].RunID)
		if err != nil {
			return nil, err
		}
		reports[i].Failures = failures
	}
	return reports, nil
}

func (s *Store) failuresFor(ctx context.Context, runID string) ([]types.Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_path, diagnostic FROM failures WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying failures for %s: %w", runID, err)
	}
	defer rows.Close()

	var failures []types.Failure
	for rows.Next() {
		var f types.Failure
		if err := rows.Scan(&f.SourcePath, &f.Diagnostic); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}
