// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a log of research requests in SQLite: what was
// asked, which mode answered, and how many tokens it cost. Recording is
// best-effort; the tool never fails a request over a history error.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"
)

// Entry is one recorded upstream attempt.
type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Query       string    `json:"query" yaml:"query"`
	Mode        string    `json:"mode" yaml:"mode"`
	Model       string    `json:"model" yaml:"model"`
	Success     bool      `json:"success" yaml:"success"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	TotalTokens int       `json:"total_tokens" yaml:"total_tokens"`
}

// Store manages the request-history SQLite database.
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
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		query TEXT NOT NULL,
		mode TEXT NOT NULL,
		model TEXT,
		success INTEGER NOT NULL,
		error TEXT,
		total_tokens INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at)`)
	return err
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one entry. Missing ID and CreatedAt fields are filled in.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, created_at, query, mode, model, success, error, total_tokens)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.Format(time.RFC3339Nano), e.Query, e.Mode, e.Model,
		boolToInt(e.Success), e.Error, e.TotalTokens)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. limit <= 0 means 20.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, query, mode, model, success, error, total_tokens
		 FROM requests ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
			success int
		)
		if err := rows.Scan(&e.ID, &created, &e.Query, &e.Mode, &e.Model, &success, &e.Error, &e.TotalTokens); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		if t, parseErr := time.Parse(time.RFC3339Nano, created); parseErr == nil {
			e.CreatedAt = t
		}
		e.Success = success != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExportYAML writes the most recent entries to w as a YAML document,
// newest first. limit <= 0 exports up to 1000 entries.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	if limit <= 0 {
		limit = 1000
	}
	entries, err := s.List(ctx, limit)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(entries)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
