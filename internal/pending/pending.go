// Package pending persists failed writes so they can be replayed after a
// restart. The log is an append-only SQLite table; entries are removed one by
// one once a replay is confirmed.
package pending

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Kind identifies the operation a pending write replays.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
)

// Write is one durable pending-write record.
type Write struct {
	ID         int64
	Kind       Kind
	Collection string
	DocID      string // update only
	Payload    []byte // JSON document or patch
	CreatedAt  time.Time
}

// Log is a SQLite-backed pending-write log.
type Log struct {
	db *sql.DB
}

// Open opens (or creates) the pending-write log in dataDir. Pass ":memory:"
// as dataDir for an in-memory log (used by tests).
func Open(dataDir string) (*Log, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "pending.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening pending log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging pending log: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS pending_writes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		collection TEXT NOT NULL,
		doc_id TEXT NOT NULL DEFAULT '',
		payload BLOB NOT NULL,
		created_at DATETIME NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating pending_writes table: %w", err)
	}

	return &Log{db: db}, nil
}

// Close closes the underlying database connection.
func (l *Log) Close() error {
	return l.db.Close()
}

// Append adds a write to the end of the log.
func (l *Log) Append(w Write) error {
	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := l.db.Exec(
		`INSERT INTO pending_writes (kind, collection, doc_id, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(w.Kind), w.Collection, w.DocID, w.Payload, createdAt,
	); err != nil {
		return fmt.Errorf("appending pending write: %w", err)
	}
	return nil
}

// All returns every pending write in insertion order.
func (l *Log) All() ([]Write, error) {
	rows, err := l.db.Query(
		`SELECT id, kind, collection, doc_id, payload, created_at FROM pending_writes ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending writes: %w", err)
	}
	defer rows.Close()

	var writes []Write
	for rows.Next() {
		var w Write
		var kind string
		if err := rows.Scan(&w.ID, &kind, &w.Collection, &w.DocID, &w.Payload, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pending write: %w", err)
		}
		w.Kind = Kind(kind)
		writes = append(writes, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending writes: %w", err)
	}
	return writes, nil
}

// Remove deletes a single entry after its replay succeeded.
func (l *Log) Remove(id int64) error {
	if _, err := l.db.Exec(`DELETE FROM pending_writes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing pending write %d: %w", id, err)
	}
	return nil
}

// Count returns the number of entries still in the log.
func (l *Log) Count() (int, error) {
	var n int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM pending_writes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending writes: %w", err)
	}
	return n, nil
}
