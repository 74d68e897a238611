package engine

// Random is the uniform source used to place spawned tiles.
// *math/rand/v2.Rand satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Board is an N×N lattice of optional tiles, indexed cells[x][y].
type Board struct {
	size  int
	cells [][]*Tile
}

// NewBoard creates an empty board.
func NewBoard(size int) *Board {
	b := &Board{size: size}
	b.cells = b.empty()
	return b
}

// NewBoardFromState rebuilds a board from serialized cells. Every tile is a
// fresh Tile with value and position copied verbatim.
func NewBoardFromState(size int, cells [][]*SerializedTile) *Board {
	b := &Board{size: size}
	b.cells = b.fromState(cells)
	return b
}

func (b *Board) empty() [][]*Tile {
	cells := make([][]*Tile, b.size)
	for x := range cells {
		cells[x] = make([]*Tile, b.size)
	}
	return cells
}

func (b *Board) fromState(state [][]*SerializedTile) [][]*Tile {
	cells := b.empty()
	for x := 0; x < b.size && x < len(state); x++ {
		for y := 0; y < b.size && y < len(state[x]); y++ {
			if st := state[x][y]; st != nil {
				cells[x][y] = NewTile(st.Position, st.Value)
			}
		}
	}
	return cells
}

// Size returns the board edge length.
func (b *Board) Size() int {
	return b.size
}

// RandomAvailableCell picks an empty cell uniformly. It returns false when the
// board is full.
func (b *Board) RandomAvailableCell(rng Random) (Position, bool) {
	cells := b.AvailableCells()
	if len(cells) == 0 {
		return Position{}, false
	}
	return cells[rng.IntN(len(cells))], true
}

// AvailableCells lists empty cells, x outer and y inner.
func (b *Board) AvailableCells() []Position {
	var cells []Position
	b.EachCell(func(x, y int, tile *Tile) {
		if tile == nil {
			cells = append(cells, Position{X: x, Y: y})
		}
	})
	return cells
}

// EachCell calls fn for every cell, x outer and y inner.
func (b *Board) EachCell(fn func(x, y int, tile *Tile)) {
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			fn(x, y, b.cells[x][y])
		}
	}
}

// CellsAvailable reports whether any cell is empty.
func (b *Board) CellsAvailable() bool {
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			if b.cells[x][y] == nil {
				return true
			}
		}
	}
	return false
}

// CellAvailable reports whether the cell is free.
func (b *Board) CellAvailable(pos Position) bool {
	return !b.CellOccupied(pos)
}

// CellOccupied reports whether a tile sits at pos.
func (b *Board) CellOccupied(pos Position) bool {
	return b.CellContent(pos) != nil
}

// CellContent returns the tile at pos, or nil when the cell is empty or out
// of bounds.
func (b *Board) CellContent(pos Position) *Tile {
	if !b.WithinBounds(pos) {
		return nil
	}
	return b.cells[pos.X][pos.Y]
}

// InsertTile stores the tile at its own position, replacing any occupant.
func (b *Board) InsertTile(tile *Tile) {
	b.cells[tile.X][tile.Y] = tile
}

// RemoveTile clears the cell at the tile's own position.
func (b *Board) RemoveTile(tile *Tile) {
	b.cells[tile.X][tile.Y] = nil
}

// WithinBounds reports whether pos lies on the board.
func (b *Board) WithinBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < b.size &&
		pos.Y >= 0 && pos.Y < b.size
}

// Tiles returns every tile, x outer and y inner.
func (b *Board) Tiles() []*Tile {
	var tiles []*Tile
	b.EachCell(func(_, _ int, tile *Tile) {
		if tile != nil {
			tiles = append(tiles, tile)
		}
	})
	return tiles
}

// Clone returns a deep copy, transient fields included.
func (b *Board) Clone() *Board {
	c := &Board{size: b.size, cells: b.empty()}
	b.EachCell(func(x, y int, tile *Tile) {
		if tile == nil {
			return
		}
		cp := *tile
		if tile.PreviousPosition != nil {
			prev := *tile.PreviousPosition
			cp.PreviousPosition = &prev
		}
		if tile.MergedFrom != nil {
			from := *tile.MergedFrom
			cp.MergedFrom = &from
		}
		c.cells[x][y] = &cp
	})
	return c
}

// Serialize returns the persisted form of the board.
func (b *Board) Serialize() SerializedGrid {
	cells := make([][]*SerializedTile, b.size)
	for x := 0; x < b.size; x++ {
		cells[x] = make([]*SerializedTile, b.size)
		for y := 0; y < b.size; y++ {
			if tile := b.cells[x][y]; tile != nil {
				st := tile.Serialize()
				cells[x][y] = &st
			}
		}
	}
	return SerializedGrid{Size: b.size, Cells: cells}
}

// View returns a copy of every tile with animation hints for renderers.
func (b *Board) View() []TileView {
	views := make([]TileView, 0, b.size*b.size)
	b.EachCell(func(_, _ int, tile *Tile) {
		if tile != nil {
			views = append(views, tile.view())
		}
	})
	return views
}
