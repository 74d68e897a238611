package terminal

import (
	"context"

	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/engine"
)

// Play runs a new game on screen until the player quits or ctx ends. Extra
// options are applied after the renderer, so a storage option can keep the
// best score between runs.
func Play(ctx context.Context, screen *Screen, config *engine.Config, logger *zap.Logger, opts ...engine.Option) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = engine.DefaultConfig()
	}

	renderer := NewRenderer(screen, Title(config.Name))
	options := append([]engine.Option{engine.WithActuator(renderer), engine.WithLogger(logger)}, opts...)
	game, err := engine.NewGame(config, options...)
	if err != nil {
		return err
	}

	return Loop(ctx, screen, renderer, game, logger)
}

// Loop feeds keyboard commands to a game already wired to renderer.
func Loop(ctx context.Context, screen *Screen, renderer *Renderer, game *engine.Game, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	input := NewKeyInput(screen, renderer.Redraw)
	defer input.Stop()

	cfg := game.Config()
	logger.Info("terminal game started", zap.String("config", cfg.Name), zap.Int("size", cfg.Size))
	err := game.Run(ctx, input)
	logger.Info("terminal game finished", zap.Int("score", game.Score()), zap.Int("best", game.BestScore()))
	return err
}

// Title is the header shown above the board.
func Title(configName string) string {
	if configName == "" {
		return "Tile Merge"
	}
	return "Tile Merge (" + configName + ")"
}
