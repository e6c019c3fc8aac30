// Package storage provides client-local durable storage backed by SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database holding preferences and session history.
type Store struct {
	db *sql.DB
}

// SessionEntry is one finished session in the history table.
type SessionEntry struct {
	ID        string
	EngineID  string
	Score     int
	Lines     int
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	dbPath, err := ExpandHome(dbPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY between
	// SSH sessions sharing the store.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			engine_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			lines INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_top ON sessions(engine_id, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get returns the raw value stored under key.
// The boolean is false when no entry exists.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM prefs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	return nil
}

// PutMax stores v under key only if it is greater than the integer already
// stored there. A missing or corrupt entry (see ParseCount) is overwritten.
// Returns the value persisted after the write.
func (s *Store) PutMax(key string, v int) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	var raw string
	err = tx.QueryRow("SELECT value FROM prefs WHERE key = ?", key).Scan(&raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}
	if cur, ok := ParseCount(raw); ok && cur >= v {
		return cur, nil
	}

	_, err = tx.Exec(
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, strconv.Itoa(v),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit %q: %w", key, err)
	}
	return v, nil
}

// Delete removes the entry stored under key.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM prefs WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete %q: %w", key, err)
	}
	return nil
}

// SaveSession records a finished session.
func (s *Store) SaveSession(e SessionEntry) error {
	_, err := s.db.Exec(
		"INSERT INTO sessions (id, engine_id, score, lines) VALUES (?, ?, ?, ?)",
		e.ID, e.EngineID, e.Score, e.Lines,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// TopSessions retrieves the best sessions for the given engine.
// Results are ordered by score descending.
func (s *Store) TopSessions(engineID string, limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, engine_id, score, lines, created_at
		 FROM sessions
		 WHERE engine_id = ?
		 ORDER BY score DESC, created_at ASC
		 LIMIT ?`,
		engineID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		var e SessionEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.EngineID, &e.Score, &e.Lines, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// EngineStats contains aggregated statistics for an engine.
type EngineStats struct {
	EngineID   string
	Sessions   int
	HighScore  int
	AvgScore   float64
	TotalLines int64
}

// Stats retrieves aggregated statistics for a specific engine.
func (s *Store) Stats(engineID string) (*EngineStats, error) {
	stats := &EngineStats{EngineID: engineID}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(lines), 0)
		 FROM sessions WHERE engine_id = ?`,
		engineID,
	).Scan(&stats.Sessions, &stats.HighScore, &stats.AvgScore, &stats.TotalLines)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
