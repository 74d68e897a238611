package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/tile-merge-game/game/config"
	"github.com/wricardo/tile-merge-game/game/engine"
	"github.com/wricardo/tile-merge-game/game/service"
	"github.com/wricardo/tile-merge-game/game/session"
	"github.com/wricardo/tile-merge-game/terminal"
)

// terminalSessionID names the saved terminal game for a variant.
func terminalSessionID(configID string) string {
	return "terminal-" + configID
}

func variantID(requested string) string {
	if requested == "" {
		return config.DefaultName
	}
	return requested
}

// runPlay plays in the terminal. The game is stored like any other session,
// so quitting and coming back resumes it.
func runPlay(ctx context.Context, cmd *cli.Command) error {
	logger := zap.NewNop()
	if path := cmd.String("log-file"); path != "" {
		l, err := initLogger(cmd.String("log-format"), cmd.Bool("debug"), path)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer l.Sync()
		logger = l
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	screen, err := terminal.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer screen.Close()

	requested := cmd.String("config")
	sessionID := terminalSessionID(variantID(requested))
	renderer := terminal.NewRenderer(screen, terminal.Title(requested))

	// only the terminal game draws; other stored sessions load silently
	actuators := func(id string) engine.Actuator {
		if strings.EqualFold(id, sessionID) {
			return renderer
		}
		return engine.NopActuator()
	}
	svc, err := buildServices(ctx, cmd.String("config-dir"), storageFrom(cmd), logger,
		session.WithActuatorFactory(actuators))
	if err != nil {
		return err
	}
	defer svc.shutdown(logger)

	s, err := openTerminalSession(svc, requested, cmd.Bool("fresh"))
	if err != nil {
		return err
	}
	renderer.Actuate(s.Game.Board(), s.Game.Metadata())

	err = terminal.Loop(ctx, screen, renderer, s.Game, logger)
	if saveErr := svc.sessions.Save(s.ID); saveErr != nil {
		logger.Warn("failed to save terminal game", zap.Error(saveErr))
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openTerminalSession resumes the saved terminal game for the variant or
// starts one.
func openTerminalSession(svc *services, configName string, fresh bool) (*service.Session, error) {
	id := variantID(configName)
	cfg, err := svc.configs.LoadConfig(id)
	if err != nil {
		if configName != "" {
			return nil, err
		}
		cfg = svc.configs.GetDefault()
	}

	sessionID := terminalSessionID(id)
	if fresh {
		if err := svc.sessions.Delete(sessionID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			return nil, err
		}
	}
	return svc.sessions.GetOrCreate(sessionID, id, cfg)
}
