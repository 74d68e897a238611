package service

import (
	"errors"
	"time"

	"github.com/wricardo/tile-merge-game/game/engine"
)

// ErrConfigNotFound is returned when a requested variant does not exist.
var ErrConfigNotFound = errors.New("configuration not found")

// Event types reported by game operations
const (
	EventMove        = "move"
	EventMerge       = "merge"
	EventWon         = "won"
	EventGameOver    = "game_over"
	EventNoOp        = "no_op"
	EventIgnored     = "ignored"
	EventRestart     = "restart"
	EventKeepPlaying = "keep_playing"
)

// Bulk move stop codes
const (
	StopGameOver   = "game_over"
	StopWon        = "won"
	StopInvalidDir = "invalid_direction"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string         `json:"id"`
	ConfigName     string         `json:"config_name"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	Game           *GameSnapshot  `json:"game"`
	GameConfig     *engine.Config `json:"game_config"`
}

// GameSnapshot is a point-in-time view of one game
type GameSnapshot struct {
	State         *engine.GameState `json:"state"`
	Rows          [][]int           `json:"rows"` // rows[y][x], 0 for empty
	Tiles         []engine.TileView `json:"tiles"`
	Metadata      engine.Metadata   `json:"metadata"`
	PossibleMoves []string          `json:"possible_moves"`
	MaxTile       int               `json:"max_tile"`
	WinValue      int               `json:"win_value"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success    bool                   `json:"success"`
	Direction  string                 `json:"direction"`
	ScoreDelta int                    `json:"score_delta"`
	Merges     int                    `json:"merges"`
	Spawned    *engine.SerializedTile `json:"spawned,omitempty"`
	Game       *GameSnapshot          `json:"game"`
	Message    string                 `json:"message"`
	Events     []GameEvent            `json:"events,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int  `json:"moves_executed"`
	RequestedMoves int  `json:"requested_moves"`
	Success        bool `json:"success"`
	ScoreDelta     int  `json:"score_delta"`

	StoppedReason  string `json:"stopped_reason,omitempty"`
	StopReasonCode string `json:"stop_reason_code,omitempty"` // game_over|won|invalid_direction
	StoppedOnMove  int    `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool   `json:"truncated,omitempty"`
	Limit          int    `json:"limit,omitempty"`

	Steps  []StepInfo    `json:"steps,omitempty"`
	Game   *GameSnapshot `json:"game"`
	Events []GameEvent   `json:"events"`
}

// StepInfo is a compact record for each executed move in the bulk call
type StepInfo struct {
	Idx        int                    `json:"idx"`
	Dir        string                 `json:"dir"`
	Moved      bool                   `json:"moved"`
	ScoreDelta int                    `json:"score_delta"`
	Merges     int                    `json:"merges"`
	Spawned    *engine.SerializedTile `json:"spawned,omitempty"`
	Won        bool                   `json:"won,omitempty"`
	Over       bool                   `json:"over,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string           `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Position  *engine.Position `json:"position,omitempty"`
	Value     int              `json:"value,omitempty"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename        string  `json:"filename"`
	ConfigID        string  `json:"config_id"` // The identifier to use for session creation
	Name            string  `json:"name"`      // Display name
	Description     string  `json:"description"`
	Size            int     `json:"size"`
	StartTiles      int     `json:"start_tiles"`
	WinValue        int     `json:"win_value"`
	FourProbability float64 `json:"four_probability"`
}
