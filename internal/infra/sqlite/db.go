// Package sqlite opens the execution history database.
// Uses modernc.org/sqlite, a pure-Go SQLite driver (no CGO required), so the
// server stays a single static binary.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Register the modernc sqlite driver under the name "sqlite"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// NewDB opens (or creates) a SQLite database at path:
//   - WAL journal mode (history reads do not block the recorder)
//   - 5-second busy timeout
//   - synchronous=NORMAL (safe for WAL, cheaper than FULL)
//
// The parent directory must already exist. An in-memory database is limited
// to a single connection so every query sees the same data.
func NewDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil, fmt.Errorf("sqlite.NewDB: parent directory %q does not exist", dir)
		}
	}

	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.NewDB: open %q: %w", path, err)
	}

	if path == MemoryPath {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.NewDB: ping %q: %w", path, err)
	}

	return db, nil
}
