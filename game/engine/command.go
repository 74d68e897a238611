package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// CommandKind enumerates what an input source can ask for.
type CommandKind int

const (
	CommandMove CommandKind = iota
	CommandRestart
	CommandKeepPlaying
)

var ErrUnknownCommand = errors.New("unknown command")

func (k CommandKind) String() string {
	switch k {
	case CommandMove:
		return "move"
	case CommandRestart:
		return "restart"
	case CommandKeepPlaying:
		return "keep_playing"
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is one user intent. Direction is only read for CommandMove.
type Command struct {
	Kind      CommandKind
	Direction Direction
}

// MoveCommand builds a move command.
func MoveCommand(d Direction) Command {
	return Command{Kind: CommandMove, Direction: d}
}

// InputSource yields commands. Next blocks until a command is available and
// returns io.EOF when the source is exhausted or the user quits.
type InputSource interface {
	Next(ctx context.Context) (Command, error)
}

// Dispatch applies a command synchronously. Restart and keep-playing return a
// zero MoveResult.
func (g *Game) Dispatch(cmd Command) (MoveResult, error) {
	switch cmd.Kind {
	case CommandMove:
		return g.Move(cmd.Direction), nil
	case CommandRestart:
		g.Restart()
		return MoveResult{}, nil
	case CommandKeepPlaying:
		g.KeepPlaying()
		return MoveResult{}, nil
	}
	return MoveResult{}, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)
}

// Run dispatches commands from in until it reports io.EOF, fails, or ctx is
// cancelled.
func (g *Game) Run(ctx context.Context, in InputSource) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := in.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := g.Dispatch(cmd); err != nil {
			g.logger.Warn("dropping command", zap.Stringer("kind", cmd.Kind), zap.Error(err))
		}
	}
}
