package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fileorg/internal/executor"
	"fileorg/internal/services"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one organize invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	InputDir   string
	OutputDir  string
	Mode       string
	DryRun     bool
	Applied    int
	Failed     int
}

// EntryRecord is one stored plan entry.
type EntryRecord struct {
	Seq         int
	Source      string
	Destination string
	Action      string
	Status      string
	Reason      string
}

// Store persists runs backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores run and every entry of report in one transaction. The
// applied and failed counters are taken from report when it is non-nil.
func (s *Store) RecordRun(ctx context.Context, run Run, report *executor.Report) error {
	if run.ID == "" {
		return services.Wrap(services.ErrValidation, "journal", "record run", "run id is required", nil)
	}
	if report != nil {
		run.Applied = report.Applied()
		run.Failed = report.Failed()
		run.DryRun = report.DryRun
		if run.StartedAt.IsZero() {
			run.StartedAt = report.StartedAt
		}
		if run.FinishedAt.IsZero() {
			run.FinishedAt = report.FinishedAt
		}
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, input_dir, output_dir, mode, dry_run, applied, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		nullableTime(run.FinishedAt),
		run.InputDir,
		run.OutputDir,
		run.Mode,
		boolToInt(run.DryRun),
		run.Applied,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if report != nil {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO entries (run_id, seq, source, destination, action, status, reason)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for i, entry := range report.Entries {
			if _, err := stmt.ExecContext(ctx,
				run.ID,
				i,
				entry.Operation.Source,
				entry.Operation.Destination,
				entry.Operation.Action.String(),
				entry.Status.String(),
				nullableString(entry.Reason),
			); err != nil {
				return fmt.Errorf("insert entry %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = "id, started_at, finished_at, input_dir, output_dir, mode, dry_run, applied, failed"

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
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
	return runs, rows.Err()
}

// GetRun returns the run with the given id or a prefix of it.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR id LIKE ? ORDER BY started_at DESC LIMIT 2",
		id, id+"%")
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, services.Wrap(services.ErrNotFound, "journal", "get run", fmt.Sprintf("no run matches %q", id), nil)
	case 1:
		return matches[0], nil
	default:
		return Run{}, services.Wrap(services.ErrValidation, "journal", "get run", fmt.Sprintf("run id %q is ambiguous", id), nil)
	}
}

// Entries returns the stored entries of runID in plan order.
func (s *Store) Entries(ctx context.Context, runID string) ([]EntryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT seq, source, destination, action, status, reason FROM entries WHERE run_id = ? ORDER BY seq",
		runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []EntryRecord
	for rows.Next() {
		var (
			entry  EntryRecord
			reason sql.NullString
		)
		if err := rows.Scan(&entry.Seq, &entry.Source, &entry.Destination, &entry.Action, &entry.Status, &reason); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.Reason = reason.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run        Run
		startedRaw string
		finished   sql.NullString
		dryRun     int
	)
	if err := scanner.Scan(&run.ID, &startedRaw, &finished, &run.InputDir, &run.OutputDir, &run.Mode, &dryRun, &run.Applied, &run.Failed); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	started, err := parseTime(startedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at for run %s: %w", run.ID, err)
	}
	run.StartedAt = started
	if finished.Valid {
		if t, err := parseTime(finished.String); err == nil {
			run.FinishedAt = t
		}
	}
	run.DryRun = dryRun != 0
	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
