package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var schemaFiles embed.FS

// schemaStep is one embedded SQL file, identified by its name without the
// .sql suffix. Steps apply in lexical order.
type schemaStep struct {
	version string
	body    string
}

func schemaSteps() ([]schemaStep, error) {
	names, err := fs.Glob(schemaFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("journal: list schema files: %w", err)
	}
	sort.Strings(names)

	steps := make([]schemaStep, len(names))
	for i, name := range names {
		body, err := schemaFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("journal: read schema file %s: %w", path.Base(name), err)
		}
		steps[i] = schemaStep{
			version: strings.TrimSuffix(path.Base(name), ".sql"),
			body:    string(body),
		}
	}
	return steps, nil
}

// applyMigrations brings the database up to the embedded schema in a single
// transaction. Versions already listed in journal_schema are left alone.
func (s *Store) applyMigrations(ctx context.Context) error {
	steps, err := schemaSteps()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal: start schema upgrade: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const ensure = `CREATE TABLE IF NOT EXISTS journal_schema (
    version TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
)`
	if _, err := tx.ExecContext(ctx, ensure); err != nil {
		return fmt.Errorf("journal: create schema table: %w", err)
	}

	applied, err := appliedVersions(ctx, tx)
	if err != nil {
		return err
	}
	for _, step := range steps {
		if applied[step.version] {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.body); err != nil {
			return fmt.Errorf("journal: schema %s failed: %w", step.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO journal_schema (version) VALUES (?)", step.version); err != nil {
			return fmt.Errorf("journal: mark schema %s: %w", step.version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("journal: finish schema upgrade: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT version FROM journal_schema")
	if err != nil {
		return nil, fmt.Errorf("journal: read schema versions: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("journal: read schema versions: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: read schema versions: %w", err)
	}
	return applied, nil
}
