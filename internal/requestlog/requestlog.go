// Package requestlog persists one structured record per answered query to
// a local SQLite database, so routing and evaluator behavior can be audited
// after the fact.
package requestlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp DATETIME NOT NULL,
    query TEXT NOT NULL,
    classification TEXT NOT NULL,
    model_used TEXT NOT NULL,
    tokens_input INTEGER NOT NULL DEFAULT 0,
    tokens_output INTEGER NOT NULL DEFAULT 0,
    latency_ms REAL NOT NULL DEFAULT 0,
    confidence TEXT NOT NULL,
    flags TEXT NOT NULL DEFAULT '[]',
    num_sources INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_requests_timestamp ON requests(timestamp);
`

// Entry is one logged request.
type Entry struct {
	Timestamp      time.Time `json:"timestamp"`
	Query          string    `json:"query"`
	Classification string    `json:"classification"`
	Model          string    `json:"model_used"`
	TokensInput    int       `json:"tokens_input"`
	TokensOutput   int       `json:"tokens_output"`
	LatencyMs      float64   `json:"latency_ms"`
	Confidence     string    `json:"confidence"`
	Flags          []string  `json:"flags"`
	NumSources     int       `json:"num_sources"`
}

// Store is a SQLite-backed request log. Safe for concurrent use; SQLite
// serializes writers internally.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the log database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("request log dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("request log open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("request log schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Append writes one entry. A zero timestamp is filled with the current time.
func (s *Store) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	flags, err := json.Marshal(e.Flags)
	if err != nil {
		return fmt.Errorf("request log flags: %w", err)
	}
	if e.Flags == nil {
		flags = []byte("[]")
	}

	_, err = s.db.Exec(`
		INSERT INTO requests
			(timestamp, query, classification, model_used, tokens_input,
			 tokens_output, latency_ms, confidence, flags, num_sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Timestamp.Format(time.RFC3339Nano), e.Query, e.Classification,
		e.Model, e.TokensInput, e.TokensOutput, e.LatencyMs, e.Confidence,
		string(flags), e.NumSources,
	)
	if err != nil {
		return fmt.Errorf("request log insert: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, query, classification, model_used, tokens_input,
		       tokens_output, latency_ms, confidence, flags, num_sources
		FROM requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("request log query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts, flags string
		if err := rows.Scan(&ts, &e.Query, &e.Classification, &e.Model,
			&e.TokensInput, &e.TokensOutput, &e.LatencyMs, &e.Confidence,
			&flags, &e.NumSources); err != nil {
			return nil, fmt.Errorf("request log scan: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if err := json.Unmarshal([]byte(flags), &e.Flags); err != nil {
			return nil, fmt.Errorf("request log flags: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of logged requests.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM requests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("request log count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
