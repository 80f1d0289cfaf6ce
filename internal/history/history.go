// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a record of already-enriched PDFs so repeat runs
// over the same directory skip files that were completed before.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the processing-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
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
	stmt := `CREATE TABLE IF NOT EXISTS processed (
		path TEXT PRIMARY KEY,
		doi TEXT NOT NULL,
		score REAL NOT NULL,
		processed_at TEXT NOT NULL
	)`
	if _, err := s.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Seen reports whether path was already processed, returning the recorded
// DOI when it was. Paths are compared in absolute form.
func (s *Store) Seen(path string) (string, bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	var doi string
	err = s.db.QueryRow(`SELECT doi FROM processed WHERE path = ?`, abs).Scan(&doi)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying history: %w", err)
	}
	return doi, true, nil
}

// Record stores a completed file. The final path is recorded so a renamed
// file is recognized on the next run.
func (s *Store) Record(path, doi string, score float64) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO processed (path, doi, score, processed_at) VALUES (?, ?, ?, ?)`,
		abs, doi, score, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording history entry: %w", err)
	}
	return nil
}
