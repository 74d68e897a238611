package engine

// traversals holds the order in which columns (x) and rows (y) are visited.
type traversals struct {
	x []int
	y []int
}

// slideOutcome is what a single pass over the board produced.
type slideOutcome struct {
	moved      bool
	scoreDelta int
	merges     int
	reachedWin bool
}

// buildTraversals lists positions so that the cell farthest along the vector
// is always visited first.
func buildTraversals(size int, vector Vector) traversals {
	t := traversals{x: make([]int, size), y: make([]int, size)}
	for pos := 0; pos < size; pos++ {
		t.x[pos] = pos
		t.y[pos] = pos
	}

	if vector.X == 1 {
		reverse(t.x)
	}
	if vector.Y == 1 {
		reverse(t.y)
	}
	return t
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// findFarthestPosition steps from cell along vector while the next cell is on
// the board and empty. next is the first blocking position, used for the
// merge check.
func (b *Board) findFarthestPosition(cell Position, vector Vector) (farthest, next Position) {
	farthest = cell
	next = cell.Add(vector)
	for b.WithinBounds(next) && b.CellAvailable(next) {
		farthest = next
		next = farthest.Add(vector)
	}
	return farthest, next
}

// prepareTiles saves every tile's position and drops merge info.
func (b *Board) prepareTiles() {
	b.EachCell(func(_, _ int, tile *Tile) {
		if tile != nil {
			tile.MergedFrom = nil
			tile.SavePosition()
		}
	})
}

// moveTile relocates a tile, keeping the lattice and the tile's own position
// in lockstep.
func (b *Board) moveTile(tile *Tile, cell Position) {
	b.cells[tile.X][tile.Y] = nil
	b.cells[cell.X][cell.Y] = tile
	tile.UpdatePosition(cell)
}

// slide runs one move over the board without spawning. winValue marks the
// merge product that wins the game.
func (b *Board) slide(direction Direction, winValue int) slideOutcome {
	var out slideOutcome

	vector := direction.Vector()
	order := buildTraversals(b.size, vector)

	b.prepareTiles()

	for _, x := range order.x {
		for _, y := range order.y {
			cell := Position{X: x, Y: y}
			tile := b.CellContent(cell)
			if tile == nil {
				continue
			}

			farthest, nextPos := b.findFarthestPosition(cell, vector)
			next := b.CellContent(nextPos)

			// One merge per destination cell per move.
			if next != nil && next.Value == tile.Value && !next.Merged() {
				merged := NewTile(nextPos, tile.Value*2)
				merged.MergedFrom = &[2]MergeSource{
					{Value: tile.Value, Position: tile.origin()},
					{Value: next.Value, Position: next.origin()},
				}

				b.InsertTile(merged)
				b.RemoveTile(tile)

				// The source tile converges on the merge cell.
				tile.UpdatePosition(nextPos)

				out.scoreDelta += merged.Value
				out.merges++

				if merged.Value == winValue {
					out.reachedWin = true
				}
			} else {
				b.moveTile(tile, farthest)
			}

			if cell != tile.Position {
				out.moved = true
			}
		}
	}

	return out
}

// tileMatchesAvailable reports whether two orthogonal neighbours share a value.
func (b *Board) tileMatchesAvailable() bool {
	for x := 0; x < b.size; x++ {
		for y := 0; y < b.size; y++ {
			tile := b.CellContent(Position{X: x, Y: y})
			if tile == nil {
				continue
			}

			for _, direction := range Directions {
				other := b.CellContent(tile.Position.Add(direction.Vector()))
				if other != nil && other.Value == tile.Value {
					return true
				}
			}
		}
	}
	return false
}

// movesAvailable reports whether any move could still change the board.
func (b *Board) movesAvailable() bool {
	return b.CellsAvailable() || b.tileMatchesAvailable()
}
