package session

import (
	"time"

	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session record, replacing any previous one
	Save(data *PersistedSessionData) error

	// Load retrieves a session record by ID
	Load(id string) (*PersistedSessionData, error)

	// Delete removes a session record
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is one stored session. GameState is nil once the
// game is over; BestScore outlives it.
type PersistedSessionData struct {
	ID             string            `json:"id"`
	ConfigName     string            `json:"config_name"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	BestScore      int               `json:"best_score"`
	GameState      *engine.GameState `json:"game_state"`
}

// recordFor builds the persisted form of a live session from its storage.
func recordFor(s *service.Session) *PersistedSessionData {
	return &PersistedSessionData{
		ID:             s.ID,
		ConfigName:     s.ConfigName,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
		BestScore:      s.Storage.BestScore(),
		GameState:      s.Storage.GameState(),
	}
}
