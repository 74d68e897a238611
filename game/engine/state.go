package engine

import "fmt"

// ValidateGameState checks that a stored snapshot can be restored onto a
// board of the given size.
func ValidateGameState(state *GameState, size int) error {
	if state == nil {
		return fmt.Errorf("%w: state is nil", ErrInvalidState)
	}
	if state.Grid.Size != size {
		return fmt.Errorf("%w: grid size %d does not match board size %d", ErrInvalidState, state.Grid.Size, size)
	}
	if state.Score < 0 {
		return fmt.Errorf("%w: negative score %d", ErrInvalidState, state.Score)
	}
	if len(state.Grid.Cells) != size {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidState, size, len(state.Grid.Cells))
	}

	for x, column := range state.Grid.Cells {
		if len(column) != size {
			return fmt.Errorf("%w: column %d has %d cells, expected %d", ErrInvalidState, x, len(column), size)
		}
		for y, st := range column {
			if st == nil {
				continue
			}
			if st.Value < 2 || !IsPowerOfTwo(st.Value) {
				return fmt.Errorf("%w: tile at (%d,%d) has value %d", ErrInvalidState, x, y, st.Value)
			}
			if st.Position.X != x || st.Position.Y != y {
				return fmt.Errorf("%w: tile in cell (%d,%d) records position (%d,%d)",
					ErrInvalidState, x, y, st.Position.X, st.Position.Y)
			}
		}
	}

	return nil
}

// Clone returns a deep copy of the snapshot.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Grid.Cells = make([][]*SerializedTile, len(s.Grid.Cells))
	for x, column := range s.Grid.Cells {
		cp.Grid.Cells[x] = make([]*SerializedTile, len(column))
		for y, st := range column {
			if st != nil {
				tile := *st
				cp.Grid.Cells[x][y] = &tile
			}
		}
	}
	return &cp
}

// Terminated mirrors Game.IsTerminated for a stored snapshot.
func (s *GameState) Terminated() bool {
	return s.Over || (s.Won && !s.KeepPlaying)
}
