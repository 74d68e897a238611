package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is one of the four move directions.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Validation constants
const (
	MinBoardSize        = 2
	MaxBoardSize        = 16
	DefaultBoardSize    = 4
	DefaultStartTiles   = 2
	DefaultWinValue     = 2048
	DefaultFourChance   = 0.1
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256

	defaultTileValue = 2
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidState     = errors.New("invalid game state")
)

// Directions lists every direction in code order (up, right, down, left).
var Directions = [...]Direction{Up, Right, Down, Left}

var directionNames = [...]string{"up", "right", "down", "left"}

// Vector is a unit step on the board.
type Vector struct {
	X int
	Y int
}

var directionVectors = [...]Vector{
	Up:    {X: 0, Y: -1},
	Right: {X: 1, Y: 0},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
}

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// Vector returns the unit step for d. Invalid directions map to the zero vector.
func (d Direction) Vector() Vector {
	if !d.Valid() {
		return Vector{}
	}
	return directionVectors[d]
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection accepts a direction name ("up", "Right", ...) or its numeric
// code ("0".."3").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "0":
		return Up, nil
	case "right", "1":
		return Right, nil
	case "down", "2":
		return Down, nil
	case "left", "3":
		return Left, nil
	}
	return 0, fmt.Errorf("%w: %q (want up, right, down or left)", ErrInvalidDirection, s)
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved one step along v.
func (p Position) Add(v Vector) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// SerializedTile is the persisted form of a tile.
type SerializedTile struct {
	Position Position `json:"position"`
	Value    int      `json:"value"`
}

// SerializedGrid is the persisted form of a board. Cells is indexed [x][y];
// empty cells are nil.
type SerializedGrid struct {
	Size  int                 `json:"size"`
	Cells [][]*SerializedTile `json:"cells"`
}

// GameState is the snapshot written to storage after every move.
type GameState struct {
	Grid        SerializedGrid `json:"grid"`
	Score       int            `json:"score"`
	Over        bool           `json:"over"`
	Won         bool           `json:"won"`
	KeepPlaying bool           `json:"keepPlaying"`
}

// Metadata accompanies every board handed to the render collaborator.
type Metadata struct {
	Score      int  `json:"score"`
	Over       bool `json:"over"`
	Won        bool `json:"won"`
	BestScore  int  `json:"bestScore"`
	Terminated bool `json:"terminated"`
}

// MoveResult summarizes one call to Move.
type MoveResult struct {
	Direction  Direction       `json:"-"`
	Moved      bool            `json:"moved"`
	Ignored    bool            `json:"ignored,omitempty"`
	ScoreDelta int             `json:"score_delta"`
	Merges     int             `json:"merges"`
	Spawned    *SerializedTile `json:"spawned,omitempty"`
	Won        bool            `json:"won"`
	Over       bool            `json:"over"`
}
