package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// migrations bundles the schema into the binary.
//
//go:embed migrations/*.up.sql
var migrations embed.FS

// MigrateUp applies all pending *.up.sql migrations in filename order.
// Already-applied migrations are skipped; each one runs in its own transaction.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("migrate: ensure migrations table: %w", err)
	}

	files, err := loadMigrationFiles()
	if err != nil {
		return fmt.Errorf("migrate: load files: %w", err)
	}

	for _, f := range files {
		applied, checkErr := isMigrationApplied(ctx, db, f.version)
		if checkErr != nil {
			return fmt.Errorf("migrate: check applied %d: %w", f.version, checkErr)
		}
		if applied {
			continue
		}
		if applyErr := applyMigration(ctx, db, f); applyErr != nil {
			return fmt.Errorf("migrate: apply %s: %w", f.name, applyErr)
		}
	}

	return nil
}

// MigrationVersion returns the highest applied migration version, or 0.
func MigrationVersion(ctx context.Context, db *sql.DB) (int, error) {
	if err := ensureMigrationsTable(ctx, db); err != nil {
		return 0, fmt.Errorf("migrate: ensure migrations table: %w", err)
	}

	var version int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&version); err != nil {
		return 0, fmt.Errorf("migrate: query version: %w", err)
	}
	return version, nil
}

type migrationFile struct {
	version int
	name    string // e.g. "001_execution_history.up.sql"
	sql     string
}

func ensureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER NOT NULL PRIMARY KEY,
			name        TEXT    NOT NULL,
			applied_at  TEXT    NOT NULL DEFAULT (datetime('now'))
		)
	`)
	return err
}

func loadMigrationFiles() ([]migrationFile, error) {
	var files []migrationFile

	err := fs.WalkDir(migrations, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".up.sql") {
			return nil
		}
		content, err := migrations.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		version, err := versionFromFilename(d.Name())
		if err != nil {
			return err
		}
		files = append(files, migrationFile{version: version, name: d.Name(), sql: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].version < files[j].version
	})
	return files, nil
}

// versionFromFilename extracts the numeric prefix: "002_indexes.up.sql" -> 2.
func versionFromFilename(name string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= 0 {
		return 0, fmt.Errorf("migration %q has no numeric version prefix", name)
	}
	return version, nil
}

func isMigrationApplied(ctx context.Context, db *sql.DB, version int) (bool, error) {
	var count int
	row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyMigration(ctx context.Context, db *sql.DB, f migrationFile) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after Commit
	}()

	if _, execErr := tx.ExecContext(ctx, f.sql); execErr != nil {
		return fmt.Errorf("exec SQL: %w", execErr)
	}
	if _, execErr := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		f.version, f.name,
	); execErr != nil {
		return fmt.Errorf("record migration: %w", execErr)
	}

	return tx.Commit()
}
