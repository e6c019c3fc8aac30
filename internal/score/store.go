// Package score keeps the best-score record: read once at startup, cached in
// memory, and written back only when a finished session beats it.
package score

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/base-tetris/internal/storage"
)

// Backend is the durable key/value medium holding the best score.
type Backend interface {
	Get(key string) (string, bool, error)
	PutMax(key string, v int) (int, error)
}

// Store is a monotone-max cache over a Backend entry.
type Store struct {
	mu      sync.Mutex
	backend Backend
	key     string
	best    int
	logger  *log.Logger
}

// Open creates a Store and reads the persisted value.
// A nil logger discards log output.
func Open(backend Backend, key string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{
		backend: backend,
		key:     key,
		logger:  logger,
	}
	s.best = s.Read()
	return s
}

// Read returns the persisted best score, or 0 when the entry is absent,
// unparseable or negative. It never fails.
func (s *Store) Read() int {
	raw, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.logger.Warn("cannot read best score, using 0", "key", s.key, "error", err)
		return 0
	}
	if !ok {
		return 0
	}
	n, valid := storage.ParseCount(raw)
	if !valid {
		s.logger.Warn("ignoring corrupt best score", "key", s.key, "value", raw)
		return 0
	}
	return n
}

// Best returns the cached best score.
func (s *Store) Best() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best
}

// Commit records candidate if it beats the current best.
// Returns true when the best score changed. Persist failures are logged and
// the in-memory value is kept.
func (s *Store) Commit(candidate int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if candidate <= s.best {
		return false
	}
	s.best = candidate

	stored, err := s.backend.PutMax(s.key, candidate)
	if err != nil {
		s.logger.Error("cannot persist best score", "key", s.key, "score", candidate, "error", err)
		return true
	}
	// Another writer may have stored a higher value meanwhile.
	if stored > s.best {
		s.best = stored
	}
	s.logger.Info("new best score", "score", s.best)
	return true
}

// IsNewBest reports whether points deserve the "new high score" banner.
func (s *Store) IsNewBest(points int) bool {
	return points > 0 && points >= s.Best()
}
