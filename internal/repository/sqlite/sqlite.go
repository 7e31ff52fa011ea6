// Package sqlite implements the repository interfaces on top of SQLite.
//
// The store is a single file (or ":memory:" in tests) opened through
// database/sql with the pure-Go modernc.org/sqlite driver, so the bot builds
// without a C toolchain.
//
// TABLES:
//   - submissions     one row per (user_id, submission_date), append-only
//   - challenge_days  one row per day, written once by the challenge resolver
//
// Both invariants live in the schema (UNIQUE / PRIMARY KEY) rather than in
// Go code, so a lost race between two writers becomes a deterministic
// "already exists" result instead of a second row.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repositories.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/submissions.db" → file-based database
//   - ":memory:"            → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows a single writer. One pooled connection keeps writes from
	// failing with SQLITE_BUSY and keeps ":memory:" databases shared between
	// callers (every new connection to ":memory:" is a fresh, empty database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. Every statement is idempotent.
func (db *DB) migrate() error {
	// submission_date is stored as TEXT (YYYY-MM-DD) so that ORDER BY and
	// equality comparisons work on calendar days, not instants.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id              TEXT PRIMARY KEY,
			user_id         INTEGER NOT NULL,
			username        TEXT,
			submission_date TEXT NOT NULL,
			streak          INTEGER NOT NULL CHECK (streak > 0),
			proof_link      TEXT NOT NULL,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, submission_date)
		);
		CREATE INDEX IF NOT EXISTS idx_submissions_user_date
			ON submissions(user_id, submission_date DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating submissions table: %w", err)
	}

	// concepts_taught holds a JSON array of strings.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS challenge_days (
			day                 INTEGER PRIMARY KEY,
			contract_name       TEXT NOT NULL DEFAULT '',
			week                TEXT NOT NULL DEFAULT '',
			example_application TEXT NOT NULL DEFAULT '',
			concepts_taught     TEXT NOT NULL DEFAULT '[]',
			logical_progression TEXT NOT NULL DEFAULT '',
			youtube_link        TEXT NOT NULL DEFAULT '',
			title               TEXT NOT NULL DEFAULT '',
			description         TEXT NOT NULL DEFAULT '',
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating challenge_days table: %w", err)
	}

	// Solution links were added after the first challenge rows were cached.
	if err := db.addColumnIfNotExists("challenge_days", "solution_link",
		"TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding solution_link to challenge_days: %w", err)
	}

	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
