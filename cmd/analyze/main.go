// Command analyze prints stored sessions in a readable form: the board, a
// few statistics, and what each slide would do from the current position.
//
//	analyze [--config-dir configs] sessions/ab12cd34.json ...
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile-merge-game/game/config"
	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/session"
)

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Summarize stored game sessions",
		ArgsUsage: "SESSION_FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing game variants", Sources: cli.EnvVars("TILEMERGE_CONFIG_DIR")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("no session files given")
			}
			return run(os.Stdout, cmd.String("config-dir"), paths)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

// run analyzes each file, carrying on past unreadable ones.
func run(w io.Writer, configDir string, paths []string) error {
	// variants are optional; without them the classic rules apply
	configs, _ := config.NewManager(configDir, nil)

	failed := 0
	for _, path := range paths {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", path)
		record, err := loadRecord(path)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			failed++
			continue
		}
		if err := analyze(w, record, variantFor(configs, record)); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, len(paths))
	}
	return nil
}

func loadRecord(path string) (*session.PersistedSessionData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var record session.PersistedSessionData
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &record, nil
}

// variantFor resolves the session's variant, falling back to the classic
// rules resized to the stored board.
func variantFor(configs *config.Manager, record *session.PersistedSessionData) *engine.Config {
	if configs != nil && record.ConfigName != "" {
		if cfg, err := configs.LoadConfig(record.ConfigName); err == nil {
			return cfg
		}
	}

	cfg := engine.DefaultConfig()
	if record.GameState != nil && record.GameState.Grid.Size >= engine.MinBoardSize {
		cfg.Size = record.GameState.Grid.Size
	}
	return cfg
}

func analyze(w io.Writer, record *session.PersistedSessionData, cfg *engine.Config) error {
	fmt.Fprintf(w, "Session: %s\n", record.ID)
	fmt.Fprintf(w, "Config: %s (%dx%d, win at %d)\n", record.ConfigName, cfg.Size, cfg.Size, cfg.WinValue)
	if !record.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created: %s, last played: %s\n",
			record.CreatedAt.Format("2006-01-02 15:04:05"), record.LastAccessedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Best score: %d\n", record.BestScore)

	state := record.GameState
	if state == nil {
		fmt.Fprintln(w, "No game in progress (finished games are not kept)")
		return nil
	}
	if err := engine.ValidateGameState(state, cfg.Size); err != nil {
		return err
	}

	storage := engine.NewMemoryStorage()
	storage.SetBestScore(record.BestScore)
	storage.SetGameState(state)
	game, err := engine.NewGame(cfg, engine.WithStorage(storage))
	if err != nil {
		return err
	}

	board := game.Board()
	cells := cfg.Size * cfg.Size
	tiles := engine.CountTiles(board)

	fmt.Fprintf(w, "Score: %d\n\n", game.Score())
	fmt.Fprint(w, formatBoard(board))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tiles: %d/%d (%d empty)\n", tiles, cells, cells-tiles)
	fmt.Fprintf(w, "Max tile: %d\n", engine.MaxStateTile(state))
	fmt.Fprintf(w, "Total value: %d\n", engine.TotalValue(board))
	fmt.Fprintf(w, "Status: %s\n", status(game))

	if game.IsTerminated() {
		return nil
	}

	fmt.Fprintln(w, "\nNext move preview:")
	for _, d := range engine.Directions {
		preview := game.Preview(d)
		if !preview.Moved {
			fmt.Fprintf(w, "  %-5s no change\n", d)
			continue
		}
		line := fmt.Sprintf("  %-5s +%d (%d merges)", d, preview.ScoreDelta, preview.Merges)
		if preview.Won && !game.Won() {
			line += " reaches the win tile!"
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func status(game *engine.Game) string {
	switch {
	case game.Over():
		return "game over"
	case game.Won() && game.KeepsPlaying():
		return "won, playing on"
	case game.Won():
		return "won, waiting for keep playing"
	}
	return "in progress"
}

func formatBoard(board *engine.Board) string {
	size := board.Size()
	rows := make([][]string, size)
	width := 1
	for y := range rows {
		rows[y] = make([]string, size)
		for x := range rows[y] {
			rows[y][x] = "."
		}
	}
	board.EachCell(func(x, y int, tile *engine.Tile) {
		if tile == nil {
			return
		}
		label := strconv.Itoa(tile.Value)
		rows[y][x] = label
		if len(label) > width {
			width = len(label)
		}
	})

	var b strings.Builder
	for _, row := range rows {
		for x, cell := range row {
			if x > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%*s", width, cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}
