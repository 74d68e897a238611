package engine

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game lifecycle
	Setup()
	Restart()
	KeepPlaying()
	IsTerminated() bool

	// Moves
	Move(direction Direction) MoveResult
	Dispatch(cmd Command) (MoveResult, error)
	MovesAvailable() bool
	PossibleMoves() []Direction
	Preview(direction Direction) MoveResult

	// State
	Board() *Board
	Score() int
	Over() bool
	Won() bool
	BestScore() int
	Metadata() Metadata
	Serialize() *GameState
	Config() Config
}

// Game owns one board and its score. It is not safe for concurrent use.
type Game struct {
	config Config

	board       *Board
	score       int
	over        bool
	won         bool
	keepPlaying bool

	rng      Random
	storage  Storage
	actuator Actuator
	logger   *zap.Logger
}

var _ Engine = (*Game)(nil)

// Option configures a Game.
type Option func(*Game)

// WithRandom sets the source used for spawn placement and values.
func WithRandom(rng Random) Option {
	return func(g *Game) { g.rng = rng }
}

// WithStorage sets the storage collaborator.
func WithStorage(s Storage) Option {
	return func(g *Game) { g.storage = s }
}

// WithActuator sets the render collaborator.
func WithActuator(a Actuator) Option {
	return func(g *Game) { g.actuator = a }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// NewGame validates config, restores or starts a game and publishes the
// first snapshot. A nil config selects the classic rules.
func NewGame(config *Config, opts ...Option) (*Game, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	g := &Game{config: *config}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.storage == nil {
		g.storage = NewMemoryStorage()
	}
	if g.actuator == nil {
		g.actuator = NopActuator()
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}

	g.Setup()
	return g, nil
}

// Setup restores the stored game if there is a valid one, otherwise starts a
// fresh board with the configured number of start tiles.
func (g *Game) Setup() {
	previous := g.storage.GameState()
	if previous != nil {
		if err := ValidateGameState(previous, g.config.Size); err != nil {
			g.logger.Warn("discarding stored game state", zap.Error(err))
			g.storage.ClearGameState()
			previous = nil
		}
	}

	if previous != nil {
		g.board = NewBoardFromState(previous.Grid.Size, previous.Grid.Cells)
		g.score = previous.Score
		g.over = previous.Over
		g.won = previous.Won
		g.keepPlaying = previous.KeepPlaying
	} else {
		g.board = NewBoard(g.config.Size)
		g.score = 0
		g.over = false
		g.won = false
		g.keepPlaying = false

		for i := 0; i < g.config.StartTiles; i++ {
			g.spawnRandomTile()
		}
	}

	g.actuate()
}

// Restart drops the stored game and begins a new one.
func (g *Game) Restart() {
	g.storage.ClearGameState()
	g.actuator.ContinueGame()
	g.Setup()
}

// KeepPlaying lets a won game continue.
func (g *Game) KeepPlaying() {
	g.keepPlaying = true
	g.actuator.ContinueGame()
	if !g.over {
		g.storage.SetGameState(g.Serialize())
	}
}

// IsTerminated reports whether moves are currently ignored.
func (g *Game) IsTerminated() bool {
	return g.over || (g.won && !g.keepPlaying)
}

// Move slides every tile towards direction. When nothing moves the call is a
// no-op: no spawn and no published snapshot.
func (g *Game) Move(direction Direction) MoveResult {
	result := MoveResult{Direction: direction}
	if !direction.Valid() || g.IsTerminated() {
		result.Ignored = true
		return result
	}

	out := g.board.slide(direction, g.config.WinValue)
	if !out.moved {
		return result
	}

	g.score += out.scoreDelta
	if out.reachedWin {
		g.won = true
	}

	result.Spawned = g.spawnRandomTile()

	if !g.MovesAvailable() {
		g.over = true
	}

	g.actuate()

	result.Moved = true
	result.ScoreDelta = out.scoreDelta
	result.Merges = out.merges
	result.Won = g.won
	result.Over = g.over
	return result
}

// Preview reports what a move would do without touching the game.
func (g *Game) Preview(direction Direction) MoveResult {
	result := MoveResult{Direction: direction}
	if !direction.Valid() || g.IsTerminated() {
		result.Ignored = true
		return result
	}

	out := g.board.Clone().slide(direction, g.config.WinValue)
	result.Moved = out.moved
	result.ScoreDelta = out.scoreDelta
	result.Merges = out.merges
	result.Won = g.won || out.reachedWin
	return result
}

// PossibleMoves lists the directions that would change the board.
func (g *Game) PossibleMoves() []Direction {
	var moves []Direction
	for _, d := range Directions {
		if g.Preview(d).Moved {
			moves = append(moves, d)
		}
	}
	return moves
}

// MovesAvailable reports whether an empty cell or an adjacent equal pair exists.
func (g *Game) MovesAvailable() bool {
	return g.board.movesAvailable()
}

// spawnRandomTile places a 2 (or a 4 with the configured probability) on a
// random empty cell. The value is drawn before the cell.
func (g *Game) spawnRandomTile() *SerializedTile {
	if !g.board.CellsAvailable() {
		return nil
	}

	value := 2
	if g.rng.Float64() >= 1-g.config.FourProbability {
		value = 4
	}

	pos, ok := g.board.RandomAvailableCell(g.rng)
	if !ok {
		return nil
	}

	tile := NewTile(pos, value)
	g.board.InsertTile(tile)

	st := tile.Serialize()
	return &st
}

// actuate raises the best score, persists or clears the game and hands the
// board to the renderer.
func (g *Game) actuate() {
	if g.storage.BestScore() < g.score {
		g.storage.SetBestScore(g.score)
	}

	if g.over {
		g.storage.ClearGameState()
	} else {
		g.storage.SetGameState(g.Serialize())
	}

	g.actuator.Actuate(g.board, g.Metadata())
}

// Serialize returns a snapshot of the game.
func (g *Game) Serialize() *GameState {
	return &GameState{
		Grid:        g.board.Serialize(),
		Score:       g.score,
		Over:        g.over,
		Won:         g.won,
		KeepPlaying: g.keepPlaying,
	}
}

// Metadata returns what the renderer is told alongside the board.
func (g *Game) Metadata() Metadata {
	return Metadata{
		Score:      g.score,
		Over:       g.over,
		Won:        g.won,
		BestScore:  g.storage.BestScore(),
		Terminated: g.IsTerminated(),
	}
}

func (g *Game) Board() *Board { return g.board }
func (g *Game) Score() int { return g.score }
func (g *Game) Over() bool { return g.over }
func (g *Game) Won() bool { return g.won }
func (g *Game) BestScore() int { return g.storage.BestScore() }
func (g *Game) Config() Config { return g.config }
func (g *Game) KeepsPlaying() bool { return g.keepPlaying }
