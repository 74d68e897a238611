package terminal

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wricardo/tile-merge-game/game/engine"
)

func simScreen(t *testing.T) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	screen, err := newScreen(sim)
	require.NoError(t, err)
	sim.SetSize(80, 25)
	t.Cleanup(screen.Close)
	return screen, sim
}

func screenLine(s *Screen, y int) string {
	width, _ := s.Size()
	var b strings.Builder
	for x := 0; x < width; x++ {
		r, _, _, _ := s.screen.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

func screenText(s *Screen) string {
	_, height := s.Size()
	lines := make([]string, height)
	for y := range lines {
		lines[y] = screenLine(s, y)
	}
	return strings.Join(lines, "\n")
}

func TestMapKey(t *testing.T) {
	tests := []struct {
		name   string
		ev     *tcell.EventKey
		cmd    engine.Command
		action keyAction
	}{
		{"arrow up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), engine.MoveCommand(engine.Up), actionCommand},
		{"arrow right", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), engine.MoveCommand(engine.Right), actionCommand},
		{"arrow down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), engine.MoveCommand(engine.Down), actionCommand},
		{"arrow left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), engine.MoveCommand(engine.Left), actionCommand},
		{"w", tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), engine.MoveCommand(engine.Up), actionCommand},
		{"D", tcell.NewEventKey(tcell.KeyRune, 'D', tcell.ModNone), engine.MoveCommand(engine.Right), actionCommand},
		{"j", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), engine.MoveCommand(engine.Down), actionCommand},
		{"h", tcell.NewEventKey(tcell.KeyRune, 'h', tcell.ModNone), engine.MoveCommand(engine.Left), actionCommand},
		{"restart", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), engine.Command{Kind: engine.CommandRestart}, actionCommand},
		{"keep playing", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), engine.Command{Kind: engine.CommandKeepPlaying}, actionCommand},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), engine.Command{}, actionQuit},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), engine.Command{}, actionQuit},
		{"unmapped", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), engine.Command{}, actionNone},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), engine.Command{}, actionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, action := mapKey(tt.ev)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.cmd, cmd)
		})
	}
}

func TestRendererDrawsBoard(t *testing.T) {
	screen, _ := simScreen(t)
	renderer := NewRenderer(screen, "Tile Merge")

	cells := [][]*engine.SerializedTile{
		{{Position: engine.Position{X: 0, Y: 0}, Value: 2}, nil},
		{nil, {Position: engine.Position{X: 1, Y: 1}, Value: 2048}},
	}
	renderer.Actuate(engine.NewBoardFromState(2, cells), engine.Metadata{Score: 20, BestScore: 64})

	assert.Equal(t, " Tile Merge  Score: 20  Best: 64", screenLine(screen, 0))
	assert.Contains(t, screenLine(screen, boardTop+1), "2")
	assert.Contains(t, screenLine(screen, boardTop+cellHeight+1), "2048")

	text := screenText(screen)
	assert.Contains(t, text, helpLine)
	assert.NotContains(t, text, "Game over")
}

func TestRendererBanners(t *testing.T) {
	screen, _ := simScreen(t)
	renderer := NewRenderer(screen, "t")
	board := engine.NewBoard(2)

	renderer.Actuate(board, engine.Metadata{Won: true, Terminated: true})
	assert.Contains(t, screenText(screen), "You win!")

	renderer.ContinueGame()
	assert.NotContains(t, screenText(screen), "You win!")

	renderer.Actuate(board, engine.Metadata{Over: true, Terminated: true})
	assert.Contains(t, screenText(screen), "Game over!")
}

func TestRendererCopiesBoard(t *testing.T) {
	screen, _ := simScreen(t)
	renderer := NewRenderer(screen, "t")

	cells := [][]*engine.SerializedTile{
		{{Position: engine.Position{X: 0, Y: 0}, Value: 8}, nil},
		{nil, nil},
	}
	board := engine.NewBoardFromState(2, cells)
	renderer.Actuate(board, engine.Metadata{})

	board.RemoveTile(board.CellContent(engine.Position{X: 0, Y: 0}))
	renderer.Redraw()

	assert.Contains(t, screenLine(screen, boardTop+1), "8")
}

func TestTileStyle(t *testing.T) {
	_, emptyBg, _ := tileStyle(0).Decompose()
	_, twoBg, _ := tileStyle(2).Decompose()
	_, hugeBg, _ := tileStyle(1 << 20).Decompose()

	assert.Equal(t, tileColors[0], emptyBg)
	assert.Equal(t, tileColors[1], twoBg)
	assert.Equal(t, tileColors[len(tileColors)-1], hugeBg)
}

func TestKeyInputNext(t *testing.T) {
	screen, sim := simScreen(t)
	input := NewKeyInput(screen, nil)
	defer input.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	sim.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	cmd, err := input.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.MoveCommand(engine.Left), cmd)

	_, err = input.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestKeyInputContextCancel(t *testing.T) {
	screen, _ := simScreen(t)
	input := NewKeyInput(screen, nil)
	defer input.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := input.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlay(t *testing.T) {
	screen, sim := simScreen(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	storage := engine.NewMemoryStorage()
	config := &engine.Config{Name: "mini", Size: 3, StartTiles: 2, WinValue: 64, FourProbability: 0}

	sim.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, 'r', tcell.ModNone)
	sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

	err := Play(ctx, screen, config, zaptest.NewLogger(t), engine.WithStorage(storage))
	require.NoError(t, err)

	assert.Contains(t, screenLine(screen, 0), "Tile Merge (mini)")
	require.NotNil(t, storage.GameState())
	assert.Equal(t, 2, engine.CountTiles(engine.NewBoardFromState(3, storage.GameState().Grid.Cells)))
}

func TestPlayInvalidConfig(t *testing.T) {
	screen, _ := simScreen(t)

	err := Play(context.Background(), screen, &engine.Config{Size: 1}, nil)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

func TestLoopResumesGame(t *testing.T) {
	screen, sim := simScreen(t)
	renderer := NewRenderer(screen, Title("resumed"))

	storage := engine.NewMemoryStorage()
	storage.SetBestScore(500)
	storage.SetGameState(&engine.GameState{
		Grid: engine.SerializedGrid{Size: 2, Cells: [][]*engine.SerializedTile{
			{{Position: engine.Position{X: 0, Y: 0}, Value: 16}, nil},
			{nil, nil},
		}},
		Score: 120,
	})
	game, err := engine.NewGame(&engine.Config{Name: "resumed", Size: 2, StartTiles: 1, WinValue: 2048},
		engine.WithStorage(storage), engine.WithActuator(renderer))
	require.NoError(t, err)

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	require.NoError(t, Loop(context.Background(), screen, renderer, game, zaptest.NewLogger(t)))

	assert.Equal(t, " Tile Merge (resumed)  Score: 120  Best: 500", screenLine(screen, 0))
	assert.Contains(t, screenLine(screen, boardTop+1), "16")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Tile Merge", Title(""))
	assert.Equal(t, "Tile Merge (big)", Title("big"))
}
