package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	board := NewBoard(3)
	assert.Equal(t, 3, board.Size())
	assert.True(t, board.CellsAvailable())
	assert.Len(t, board.AvailableCells(), 9)
	assert.Empty(t, board.Tiles())
}

func TestBoard_CellQueries(t *testing.T) {
	board := NewBoard(4)
	tile := NewTile(Position{X: 1, Y: 2}, 8)
	board.InsertTile(tile)

	assert.True(t, board.CellOccupied(Position{X: 1, Y: 2}))
	assert.False(t, board.CellAvailable(Position{X: 1, Y: 2}))
	assert.Same(t, tile, board.CellContent(Position{X: 1, Y: 2}))

	assert.Nil(t, board.CellContent(Position{X: -1, Y: 0}))
	assert.Nil(t, board.CellContent(Position{X: 0, Y: 4}))
	assert.False(t, board.WithinBounds(Position{X: 4, Y: 0}))
	assert.True(t, board.WithinBounds(Position{X: 3, Y: 3}))

	board.RemoveTile(tile)
	assert.Nil(t, board.CellContent(Position{X: 1, Y: 2}))
}

func TestBoard_AvailableCellsOrder(t *testing.T) {
	board := boardFromRows([][]int{
		{2, 0},
		{0, 2},
	})

	assert.Equal(t, []Position{{X: 0, Y: 1}, {X: 1, Y: 0}}, board.AvailableCells())
}

func TestBoard_RandomAvailableCell(t *testing.T) {
	board := boardFromRows([][]int{
		{2, 0},
		{0, 0},
	})

	pos, ok := board.RandomAvailableCell(&scriptedRandom{ints: []int{2}})
	require.True(t, ok)
	assert.Equal(t, Position{X: 1, Y: 1}, pos)

	full := boardFromRows([][]int{
		{2, 4},
		{8, 16},
	})
	_, ok = full.RandomAvailableCell(&scriptedRandom{})
	assert.False(t, ok)
	assert.False(t, full.CellsAvailable())
}

func TestBoard_SerializeRoundTrip(t *testing.T) {
	board := boardFromRows([][]int{
		{2, 0, 0, 4},
		{0, 8, 0, 0},
		{0, 0, 16, 0},
		{32, 0, 0, 2},
	})
	board.slide(Left, DefaultWinValue)

	grid := board.Serialize()
	restored := NewBoardFromState(grid.Size, grid.Cells)

	assert.Equal(t, board.Size(), restored.Size())
	assert.Equal(t, rowsOf(board), rowsOf(restored))
	for _, tile := range restored.Tiles() {
		assert.Nil(t, tile.PreviousPosition, "transient fields are not restored")
		assert.Nil(t, tile.MergedFrom)
	}
	assert.Equal(t, grid, restored.Serialize())
}

func TestBoard_Clone(t *testing.T) {
	board := boardFromRows([][]int{
		{2, 2},
		{0, 0},
	})
	clone := board.Clone()

	clone.slide(Left, DefaultWinValue)

	assert.Equal(t, [][]int{{4, 0}, {0, 0}}, rowsOf(clone))
	assert.Equal(t, [][]int{{2, 2}, {0, 0}}, rowsOf(board), "the original is untouched")
}
