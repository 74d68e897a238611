package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRandom replays fixed draws; once exhausted it returns zero.
type scriptedRandom struct {
	floats []float64
	ints   []int
}

func (r *scriptedRandom) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRandom) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	i := r.ints[0] % n
	r.ints = r.ints[1:]
	return i
}

// stateFromRows builds a snapshot from rows[y][x]; zero is an empty cell.
func stateFromRows(rows [][]int) *GameState {
	size := len(rows)
	cells := make([][]*SerializedTile, size)
	for x := 0; x < size; x++ {
		cells[x] = make([]*SerializedTile, size)
		for y := 0; y < size; y++ {
			if v := rows[y][x]; v != 0 {
				cells[x][y] = &SerializedTile{Position: Position{X: x, Y: y}, Value: v}
			}
		}
	}
	return &GameState{Grid: SerializedGrid{Size: size, Cells: cells}}
}

// rowsOf reads the board back as rows[y][x].
func rowsOf(b *Board) [][]int {
	rows := make([][]int, b.Size())
	for y := range rows {
		rows[y] = make([]int, b.Size())
	}
	b.EachCell(func(x, y int, tile *Tile) {
		if tile != nil {
			rows[y][x] = tile.Value
		}
	})
	return rows
}

func boardFromRows(rows [][]int) *Board {
	state := stateFromRows(rows)
	return NewBoardFromState(state.Grid.Size, state.Grid.Cells)
}

// newTestGame restores a game from rows using a scripted random source that
// always spawns a 2 on the first free cell.
func newTestGame(t *testing.T, rows [][]int, opts ...Option) (*Game, *MemoryStorage) {
	t.Helper()

	storage := NewMemoryStorage()
	storage.SetGameState(stateFromRows(rows))

	config := DefaultConfig()
	config.Size = len(rows)

	all := append([]Option{WithStorage(storage), WithRandom(&scriptedRandom{})}, opts...)
	game, err := NewGame(config, all...)
	require.NoError(t, err)
	return game, storage
}

// recordingActuator remembers every call it receives.
type recordingActuator struct {
	actuations []Metadata
	views      [][]TileView
	continues  int
}

func (r *recordingActuator) Actuate(board *Board, meta Metadata) {
	r.actuations = append(r.actuations, meta)
	r.views = append(r.views, board.View())
}

func (r *recordingActuator) ContinueGame() {
	r.continues++
}
