package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the message in a one-row SQLite table. The row upsert
// gives the atomic-replace behavior; SQLite serializes writers.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at the given
// database path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS message (
		slot         INTEGER PRIMARY KEY CHECK (slot = 0),
		text         TEXT NOT NULL,
		generated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Write implements Store.
func (s *SQLiteStore) Write(msg Message) error {
	generatedAt := msg.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO message (slot, text, generated_at)
		 VALUES (0, ?, ?)
		 ON CONFLICT (slot) DO UPDATE
		 SET text = excluded.text, generated_at = excluded.generated_at`,
		msg.Text, generatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Read implements Store.
func (s *SQLiteStore) Read() (Message, error) {
	var text, generatedAt string
	err := s.db.QueryRow(
		`SELECT text, generated_at FROM message WHERE slot = 0`,
	).Scan(&text, &generatedAt)
	if err == sql.ErrNoRows {
		return Message{}, ErrEmpty
	}
	if err != nil {
		return Message{}, fmt.Errorf("read message: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, generatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("parse generated_at: %w", err)
	}

	return Message{Text: text, GeneratedAt: ts}, nil
}
