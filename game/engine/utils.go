package engine

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// MaxTile returns the largest tile value on the board, or 0 when empty.
func MaxTile(b *Board) int {
	highest := 0
	for _, tile := range b.Tiles() {
		if tile.Value > highest {
			highest = tile.Value
		}
	}
	return highest
}

// TotalValue sums every tile on the board.
func TotalValue(b *Board) int {
	total := 0
	for _, tile := range b.Tiles() {
		total += tile.Value
	}
	return total
}

// CountTiles returns how many cells are occupied.
func CountTiles(b *Board) int {
	return len(b.Tiles())
}

// MaxStateTile is MaxTile for a persisted snapshot.
func MaxStateTile(state *GameState) int {
	highest := 0
	for _, column := range state.Grid.Cells {
		for _, st := range column {
			if st != nil && st.Value > highest {
				highest = st.Value
			}
		}
	}
	return highest
}
