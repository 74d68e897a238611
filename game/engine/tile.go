package engine

import "fmt"

// MergeSource records one of the two tiles a merged tile came from: its value
// and where it started the move.
type MergeSource struct {
	Value    int      `json:"value"`
	Position Position `json:"position"`
}

// Tile is a single numbered cell on the board.
//
// PreviousPosition and MergedFrom are render-only and are reset at the start
// of every move; they are never persisted.
type Tile struct {
	Position
	Value            int
	PreviousPosition *Position
	MergedFrom       *[2]MergeSource
}

// NewTile creates a tile at pos. A zero value defaults to 2.
func NewTile(pos Position, value int) *Tile {
	if value == 0 {
		value = defaultTileValue
	}
	if value < 0 {
		panic(fmt.Sprintf("engine: tile value must be positive, got %d", value))
	}
	return &Tile{Position: pos, Value: value}
}

// SavePosition remembers the current position as the move's starting point.
func (t *Tile) SavePosition() {
	prev := t.Position
	t.PreviousPosition = &prev
}

// UpdatePosition moves the tile. Bounds are the caller's concern.
func (t *Tile) UpdatePosition(pos Position) {
	t.X = pos.X
	t.Y = pos.Y
}

// Merged reports whether the tile was produced by a merge during the current move.
func (t *Tile) Merged() bool {
	return t.MergedFrom != nil
}

// origin is where the tile started the current move.
func (t *Tile) origin() Position {
	if t.PreviousPosition != nil {
		return *t.PreviousPosition
	}
	return t.Position
}

// Serialize returns the persisted form of the tile.
func (t *Tile) Serialize() SerializedTile {
	return SerializedTile{Position: t.Position, Value: t.Value}
}

// TileView is a tile as shown to renderers, including animation hints.
type TileView struct {
	Position         Position      `json:"position"`
	Value            int           `json:"value"`
	PreviousPosition *Position     `json:"previous_position,omitempty"`
	MergedFrom       []MergeSource `json:"merged_from,omitempty"`
	New              bool          `json:"new,omitempty"`
}

func (t *Tile) view() TileView {
	v := TileView{Position: t.Position, Value: t.Value}
	if t.PreviousPosition != nil {
		prev := *t.PreviousPosition
		v.PreviousPosition = &prev
	}
	if t.MergedFrom != nil {
		v.MergedFrom = []MergeSource{t.MergedFrom[0], t.MergedFrom[1]}
	}
	v.New = t.PreviousPosition == nil && t.MergedFrom == nil
	return v
}
