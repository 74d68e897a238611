package service

import (
	"context"
	"time"

	"github.com/wricardo/tile-merge-game/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error)
	Restart(ctx context.Context, sessionID string) (*GameSnapshot, error)
	KeepPlaying(ctx context.Context, sessionID string) (*GameSnapshot, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameSnapshot, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.Config, error)
	SaveConfig(ctx context.Context, configName string, config *engine.Config) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configName string, config *engine.Config) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configName string, config *engine.Config) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.Config, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.Config
	SaveConfig(name string, config *engine.Config) error
}

// Session represents an active game session. Storage is the game's storage
// collaborator; it holds what gets persisted.
type Session struct {
	ID             string
	ConfigName     string
	Game           *engine.Game
	Storage        engine.Storage
	Config         *engine.Config
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
