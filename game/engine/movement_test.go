package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTraversals(t *testing.T) {
	tests := []struct {
		direction Direction
		x, y      []int
	}{
		{Up, []int{0, 1, 2, 3}, []int{0, 1, 2, 3}},
		{Right, []int{3, 2, 1, 0}, []int{0, 1, 2, 3}},
		{Down, []int{0, 1, 2, 3}, []int{3, 2, 1, 0}},
		{Left, []int{0, 1, 2, 3}, []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.direction.String(), func(t *testing.T) {
			got := buildTraversals(4, tt.direction.Vector())
			assert.Equal(t, tt.x, got.x)
			assert.Equal(t, tt.y, got.y)
		})
	}
}

func TestFindFarthestPosition(t *testing.T) {
	board := boardFromRows([][]int{
		{0, 0, 2, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{4, 0, 0, 0},
	})

	farthest, next := board.findFarthestPosition(Position{X: 3, Y: 0}, Left.Vector())
	assert.Equal(t, Position{X: 3, Y: 0}, farthest)
	assert.Equal(t, Position{X: 2, Y: 0}, next)

	farthest, next = board.findFarthestPosition(Position{X: 2, Y: 0}, Right.Vector())
	assert.Equal(t, Position{X: 3, Y: 0}, farthest)
	assert.Equal(t, Position{X: 4, Y: 0}, next, "next is off the board")

	farthest, next = board.findFarthestPosition(Position{X: 0, Y: 0}, Down.Vector())
	assert.Equal(t, Position{X: 0, Y: 2}, farthest)
	assert.Equal(t, Position{X: 0, Y: 3}, next)
}

func TestSlide_MergeThenShift(t *testing.T) {
	board := boardFromRows([][]int{
		{2, 2, 4, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	out := board.slide(Left, DefaultWinValue)

	assert.True(t, out.moved)
	assert.Equal(t, 4, out.scoreDelta)
	assert.Equal(t, 1, out.merges)
	assert.Equal(t, []int{4, 4, 0, 0}, rowsOf(board)[0])

	merged := board.CellContent(Position{X: 0, Y: 0})
	require.NotNil(t, merged)
	require.True(t, merged.Merged())
	assert.ElementsMatch(t, []MergeSource{
		{Value: 2, Position: Position{X: 0, Y: 0}},
		{Value: 2, Position: Position{X: 1, Y: 0}},
	}, merged.MergedFrom[:])

	shifted := board.CellContent(Position{X: 1, Y: 0})
	require.NotNil(t, shifted)
	assert.False(t, shifted.Merged(), "the 4 only slides")
	assert.Equal(t, &Position{X: 2, Y: 0}, shifted.PreviousPosition)
}

func TestSlide_MergeAcrossGap(t *testing.T) {
	board := boardFromRows([][]int{
		{2, 0, 0, 2},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	out := board.slide(Left, DefaultWinValue)

	assert.True(t, out.moved)
	assert.Equal(t, 4, out.scoreDelta)
	assert.Equal(t, []int{4, 0, 0, 0}, rowsOf(board)[0])
}

func TestSlide_AtMostOneMergePerCell(t *testing.T) {
	tests := []struct {
		name      string
		row       []int
		direction Direction
		want      []int
		score     int
	}{
		{"four equal left", []int{2, 2, 2, 2}, Left, []int{4, 4, 0, 0}, 8},
		{"four equal right", []int{2, 2, 2, 2}, Right, []int{0, 0, 4, 4}, 8},
		{"merged tile is not merged again", []int{4, 4, 8, 0}, Left, []int{8, 8, 0, 0}, 8},
		{"three equal right", []int{2, 2, 2, 0}, Right, []int{0, 0, 2, 4}, 4},
		{"no merge", []int{2, 4, 2, 4}, Left, []int{2, 4, 2, 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := boardFromRows([][]int{
				tt.row,
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			})

			out := board.slide(tt.direction, DefaultWinValue)
			assert.Equal(t, tt.want, rowsOf(board)[0])
			assert.Equal(t, tt.score, out.scoreDelta)
		})
	}
}

func TestSlide_VerticalMoves(t *testing.T) {
	board := boardFromRows([][]int{
		{2, 0, 0, 0},
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{4, 0, 0, 0},
	})

	out := board.slide(Down, DefaultWinValue)
	assert.True(t, out.moved)
	assert.Equal(t, [][]int{
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{4, 0, 0, 0},
		{4, 0, 0, 0},
	}, rowsOf(board))

	out = board.slide(Up, DefaultWinValue)
	assert.True(t, out.moved)
	assert.Equal(t, 8, out.scoreDelta)
	assert.Equal(t, 8, board.CellContent(Position{X: 0, Y: 0}).Value)
}

func TestSlide_ReachesWinValue(t *testing.T) {
	board := boardFromRows([][]int{
		{0, 0, 0, 0},
		{0, 64, 64, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	})

	out := board.slide(Right, 128)
	assert.True(t, out.reachedWin)
	assert.Equal(t, 128, board.CellContent(Position{X: 3, Y: 1}).Value)
}

func TestSlide_NothingToMove(t *testing.T) {
	rows := [][]int{
		{2, 4, 0, 0},
		{8, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	board := boardFromRows(rows)

	out := board.slide(Left, DefaultWinValue)
	assert.False(t, out.moved)
	assert.Zero(t, out.scoreDelta)
	assert.Equal(t, rows, rowsOf(board))

	out = board.slide(Up, DefaultWinValue)
	assert.False(t, out.moved)
}

func TestSlide_CellsMatchTilePositions(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	board := NewBoard(4)

	for i := 0; i < 300; i++ {
		if pos, ok := board.RandomAvailableCell(rng); ok {
			board.InsertTile(NewTile(pos, 2<<rng.IntN(3)))
		}
		board.slide(Directions[rng.IntN(4)], DefaultWinValue)

		board.EachCell(func(x, y int, tile *Tile) {
			if tile != nil {
				require.Equal(t, Position{X: x, Y: y}, tile.Position)
			}
		})
	}
}

func TestMovesAvailable(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
		want bool
	}{
		{
			name: "empty cell",
			rows: [][]int{{2, 4}, {8, 0}},
			want: true,
		},
		{
			name: "full with horizontal pair",
			rows: [][]int{{2, 2}, {4, 8}},
			want: true,
		},
		{
			name: "full with vertical pair",
			rows: [][]int{{2, 4}, {2, 8}},
			want: true,
		},
		{
			name: "full without pairs",
			rows: [][]int{{2, 4}, {4, 2}},
			want: false,
		},
		{
			name: "diagonal equals do not count",
			rows: [][]int{
				{2, 4, 2},
				{4, 2, 4},
				{2, 4, 2},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, boardFromRows(tt.rows).movesAvailable())
		})
	}
}
