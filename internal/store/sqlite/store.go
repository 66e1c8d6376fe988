// Package sqlite archives pipeline runs in SQLite. The engine itself
// stays stateless; only the CLI records runs, so past compiled
// artifacts can be inspected after the var directory is regenerated.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cprima/methodology-advisor/internal/platform/errors"
	sqlitemigrate "github.com/cprima/methodology-advisor/internal/platform/storage/sqlitemigrate"
	"github.com/cprima/methodology-advisor/internal/store/sqlite/migrations"
)

// Store persists pipeline runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Run is one archived pipeline run with its three JSON artifacts.
type Run struct {
	ID                 int64
	RunAt              time.Time
	CurrentVersion     string
	PreviousVersion    string
	CurrentFingerprint string
	CatalogCurrent     []byte
	CatalogPrevious    []byte
	CompiledRules      []byte
}

// Open opens an archive store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RecordRun inserts one pipeline run and returns its id.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if run.CurrentVersion == "" || run.CurrentFingerprint == "" {
		return 0, fmt.Errorf("current version and fingerprint are required")
	}
	runAt := run.RunAt.UTC()
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}

	res, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO pipeline_runs (
		   run_at,
		   current_version,
		   previous_version,
		   current_fingerprint,
		   catalog_current,
		   catalog_previous,
		   compiled_rules
		 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runAt.UnixMilli(),
		run.CurrentVersion,
		run.PreviousVersion,
		run.CurrentFingerprint,
		string(run.CatalogCurrent),
		string(run.CatalogPrevious),
		string(run.CompiledRules),
	)
	if err != nil {
		return 0, fmt.Errorf("insert pipeline run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read pipeline run id: %w", err)
	}
	return id, nil
}

// LatestRun returns the most recent archived run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Run{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT id, run_at, current_version, previous_version, current_fingerprint,
		       catalog_current, catalog_previous, compiled_rules
		FROM pipeline_runs
		ORDER BY run_at DESC, id DESC
		LIMIT 1`)
	return scanRun(row)
}

// RunsForVersion returns archived runs for one catalog version, newest
// first.
func (s *Store) RunsForVersion(ctx context.Context, version string) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, run_at, current_version, previous_version, current_fingerprint,
		       catalog_current, catalog_previous, compiled_rules
		FROM pipeline_runs
		WHERE current_version = ?
		ORDER BY run_at DESC, id DESC`,
		version)
	if err != nil {
		return nil, fmt.Errorf("query pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pipeline runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var runAt int64
	var current, previous, rules string
	err := row.Scan(&run.ID, &runAt, &run.CurrentVersion, &run.PreviousVersion,
		&run.CurrentFingerprint, &current, &previous, &rules)
	if err == sql.ErrNoRows {
		return Run{}, errors.New(errors.CodeNotFound, "no archived pipeline runs")
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan pipeline run: %w", err)
	}
	run.RunAt = time.UnixMilli(runAt).UTC()
	run.CatalogCurrent = []byte(current)
	run.CatalogPrevious = []byte(previous)
	run.CompiledRules = []byte(rules)
	return run, nil
}
