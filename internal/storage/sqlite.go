// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Store backed by a single key/value table in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens a SQLite-backed store at the given path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS kv_entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the value for key, or ErrNotFound.
func (s *SQLite) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key.
func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, ?)`, key, value, time.Now())
	return err
}

// Remove deletes key.
func (s *SQLite) Remove(key string) error {
	_, err := s.db.Exec("DELETE FROM kv_entries WHERE key = ?", key)
	return err
}
