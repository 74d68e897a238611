package engine

import "sync"

// Storage persists the current game and the best score. Implementations
// never fail from the engine's point of view: errors are handled internally
// and surface as "no state" or a zero best score.
type Storage interface {
	GameState() *GameState
	SetGameState(state *GameState)
	ClearGameState()
	BestScore() int
	SetBestScore(score int)
}

// Actuator renders the board. Actuate is called after every published move;
// the board keeps being mutated by later moves, so implementations that
// defer work must copy what they need (Board.View) before returning.
type Actuator interface {
	Actuate(board *Board, meta Metadata)
	ContinueGame()
}

// MemoryStorage keeps state in process.
type MemoryStorage struct {
	mu        sync.Mutex
	state     *GameState
	bestScore int
}

// NewMemoryStorage creates empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) GameState() *GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func (m *MemoryStorage) SetGameState(state *GameState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
}

func (m *MemoryStorage) ClearGameState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = nil
}

func (m *MemoryStorage) BestScore() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bestScore
}

func (m *MemoryStorage) SetBestScore(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bestScore = score
}

type nopActuator struct{}

func (nopActuator) Actuate(*Board, Metadata) {}
func (nopActuator) ContinueGame()            {}

// NopActuator returns an Actuator that discards everything.
func NopActuator() Actuator {
	return nopActuator{}
}

// ActuatorFunc adapts a function to Actuator; ContinueGame is a no-op.
type ActuatorFunc func(board *Board, meta Metadata)

func (f ActuatorFunc) Actuate(board *Board, meta Metadata) { f(board, meta) }
func (f ActuatorFunc) ContinueGame()                       {}

// MultiActuator fans out to several actuators in order.
type MultiActuator []Actuator

func (m MultiActuator) Actuate(board *Board, meta Metadata) {
	for _, a := range m {
		a.Actuate(board, meta)
	}
}

func (m MultiActuator) ContinueGame() {
	for _, a := range m {
		a.ContinueGame()
	}
}
