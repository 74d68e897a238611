package terminal

import (
	"fmt"
	"math/bits"
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/tile-merge-game/game/engine"
)

const (
	cellWidth  = 7
	cellHeight = 3
	boardTop   = 2
	boardLeft  = 1
)

const helpLine = "arrows/wasd/hjkl move  r restart  c keep playing  q quit"

// tile backgrounds indexed by log2(value)
var tileColors = []tcell.Color{
	tcell.ColorDarkSlateGray, // empty
	tcell.NewRGBColor(238, 228, 218),
	tcell.NewRGBColor(237, 224, 200),
	tcell.NewRGBColor(242, 177, 121),
	tcell.NewRGBColor(245, 149, 99),
	tcell.NewRGBColor(246, 124, 95),
	tcell.NewRGBColor(246, 94, 59),
	tcell.NewRGBColor(237, 207, 114),
	tcell.NewRGBColor(237, 204, 97),
	tcell.NewRGBColor(237, 200, 80),
	tcell.NewRGBColor(237, 197, 63),
	tcell.NewRGBColor(237, 194, 46),
}

// Renderer draws the board on a Screen. It implements engine.Actuator.
type Renderer struct {
	screen *Screen
	title  string

	mu     sync.Mutex
	rows   [][]int
	meta   engine.Metadata
	banner string
}

var _ engine.Actuator = (*Renderer)(nil)

// NewRenderer creates a renderer for the given screen.
func NewRenderer(screen *Screen, title string) *Renderer {
	return &Renderer{screen: screen, title: title}
}

// Actuate copies the board and redraws.
func (r *Renderer) Actuate(board *engine.Board, meta engine.Metadata) {
	size := board.Size()
	rows := make([][]int, size)
	for y := range rows {
		rows[y] = make([]int, size)
	}
	board.EachCell(func(x, y int, tile *engine.Tile) {
		if tile != nil {
			rows[y][x] = tile.Value
		}
	})

	r.mu.Lock()
	r.rows = rows
	r.meta = meta
	r.banner = bannerFor(meta)
	r.mu.Unlock()

	r.Redraw()
}

// ContinueGame clears the win or game over banner.
func (r *Renderer) ContinueGame() {
	r.mu.Lock()
	r.banner = ""
	r.mu.Unlock()

	r.Redraw()
}

func bannerFor(meta engine.Metadata) string {
	switch {
	case meta.Over:
		return "Game over!  r to try again"
	case meta.Won && meta.Terminated:
		return "You win!  c to keep playing, r to restart"
	}
	return ""
}

// Redraw paints the last board received.
func (r *Renderer) Redraw() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.screen.Clear()
	plain := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	bold := plain.Bold(true)

	header := fmt.Sprintf("%s  Score: %d  Best: %d", r.title, r.meta.Score, r.meta.BestScore)
	r.screen.DrawText(boardLeft, 0, header, bold)

	for y, row := range r.rows {
		for x, value := range row {
			r.drawCell(x, y, value)
		}
	}

	line := boardTop + len(r.rows)*cellHeight + 1
	if r.banner != "" {
		r.screen.DrawText(boardLeft, line, r.banner, bold.Foreground(tcell.ColorYellow))
	}
	r.screen.DrawText(boardLeft, line+1, helpLine, plain.Foreground(tcell.ColorGray))
	r.screen.Show()
}

func (r *Renderer) drawCell(x, y, value int) {
	style := tileStyle(value)
	left := boardLeft + x*cellWidth
	top := boardTop + y*cellHeight

	// one column and row of spacing between cells
	for dy := 0; dy < cellHeight-1; dy++ {
		for dx := 0; dx < cellWidth-1; dx++ {
			r.screen.SetContent(left+dx, top+dy, ' ', style)
		}
	}
	if value == 0 {
		return
	}
	label := strconv.Itoa(value)
	offset := (cellWidth - 1 - len(label)) / 2
	if offset < 0 {
		offset = 0
	}
	r.screen.DrawText(left+offset, top+(cellHeight-1)/2, label, style.Bold(true))
}

func tileStyle(value int) tcell.Style {
	idx := 0
	if value > 0 {
		idx = bits.Len(uint(value)) - 1
	}
	if idx >= len(tileColors) {
		idx = len(tileColors) - 1
	}
	fg := tcell.ColorBlack
	if idx >= 3 {
		fg = tcell.ColorWhite
	}
	return tcell.StyleDefault.Background(tileColors[idx]).Foreground(fg)
}
