package archive

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/newhook/tasklog/internal/logging"
	tlsignal "github.com/newhook/tasklog/internal/signal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one numbered schema change, read from "NNN_name.sql".
type Migration struct {
	Version string
	Name    string
	UpSQL   string
	DownSQL string
}

// RunMigrations applies every pending embedded migration.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return RunMigrationsForFS(ctx, db, migrationsFS)
}

// RunMigrationsForFS applies every pending migration found in fsys.
func RunMigrationsForFS(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := MigrationStatus(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	migrations, err := readMigrations(fsys)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		logging.Info("applying migration", "version", m.Version, "name", m.Name)
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
	}
	return nil
}

// RollbackMigration reverts the most recently applied embedded migration.
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	var version string
	err := db.QueryRowContext(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no migrations to rollback")
	}
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	migrations, err := readMigrations(migrationsFS)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	for _, m := range migrations {
		if m.Version != version {
			continue
		}
		if m.DownSQL == "" {
			return fmt.Errorf("migration %s has no down script", version)
		}
		logging.Info("rolling back migration", "version", m.Version, "name", m.Name)
		return runInTx(ctx, db, m.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", version)
	}
	return fmt.Errorf("migration %s not found", version)
}

// MigrationStatus returns the applied migration versions in order.
func MigrationStatus(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		if strings.Contains(err.Error(), "no such table") {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, m Migration) error {
	// Signals are held until the migration commits.
	tlsignal.Block()
	defer tlsignal.Unblock()
	return runInTx(ctx, db, m.UpSQL, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version)
}

// runInTx executes script and then the bookkeeping statement in one transaction.
func runInTx(ctx context.Context, db *sql.DB, script, record string, version string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitSQLStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, record, version); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

func readMigrations(fsys fs.FS) ([]Migration, error) {
	var migrations []Migration
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		version, name, ok := strings.Cut(strings.TrimSuffix(path.Base(p), ".sql"), "_")
		if !ok {
			return fmt.Errorf("invalid migration filename: %s", path.Base(p))
		}
		up, down := parseSections(string(content))
		migrations = append(migrations, Migration{Version: version, Name: name, UpSQL: up, DownSQL: down})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseSections splits a migration file on its "-- +up" and "-- +down" markers.
func parseSections(content string) (up, down string) {
	var upLines, downLines []string
	var section *[]string
	for _, line := range strings.Split(content, "\n") {
		switch strings.TrimSpace(line) {
		case "-- +up":
			section = &upLines
			continue
		case "-- +down":
			section = &downLines
			continue
		}
		if section != nil {
			*section = append(*section, line)
		}
	}
	return strings.Join(upLines, "\n"), strings.Join(downLines, "\n")
}

// splitSQLStatements splits on semicolons outside quotes and comments.
func splitSQLStatements(script string) []string {
	var statements []string
	var current strings.Builder
	var quote rune
	inLineComment := false

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inLineComment:
			if r == '\n' {
				inLineComment = false
			}
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			inLineComment = true
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ';':
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return statements
}
