package session

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/base-tetris/internal/storage"
)

// HistoryStore records finished sessions.
type HistoryStore interface {
	SaveSession(e storage.SessionEntry) error
}

// RecordHistory returns a game-over hook that stores each finished session
// under a fresh id. Sessions without points are not recorded. Save errors are
// logged; the game continues regardless.
func RecordHistory(store HistoryStore, engineID string, logger *log.Logger) func(Result) {
	return func(r Result) {
		if store == nil || r.Score <= 0 {
			return
		}
		entry := storage.SessionEntry{
			ID:       uuid.NewString(),
			EngineID: engineID,
			Score:    r.Score,
			Lines:    r.Lines,
		}
		if err := store.SaveSession(entry); err != nil && logger != nil {
			logger.Warn("cannot record session", "error", err)
		}
	}
}
