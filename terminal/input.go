package terminal

import (
	"context"
	"io"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/tile-merge-game/game/engine"
)

type keyAction int

const (
	actionNone keyAction = iota
	actionCommand
	actionQuit
)

// mapKey translates a key press into a game command.
func mapKey(ev *tcell.EventKey) (engine.Command, keyAction) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return engine.Command{}, actionQuit
	case tcell.KeyUp:
		return engine.MoveCommand(engine.Up), actionCommand
	case tcell.KeyRight:
		return engine.MoveCommand(engine.Right), actionCommand
	case tcell.KeyDown:
		return engine.MoveCommand(engine.Down), actionCommand
	case tcell.KeyLeft:
		return engine.MoveCommand(engine.Left), actionCommand
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 && (ev.Rune() == 'c' || ev.Rune() == 'C') {
			return engine.Command{}, actionQuit
		}
		switch ev.Rune() {
		case 'w', 'W', 'k', 'K':
			return engine.MoveCommand(engine.Up), actionCommand
		case 'd', 'D', 'l', 'L':
			return engine.MoveCommand(engine.Right), actionCommand
		case 's', 'S', 'j', 'J':
			return engine.MoveCommand(engine.Down), actionCommand
		case 'a', 'A', 'h', 'H':
			return engine.MoveCommand(engine.Left), actionCommand
		case 'r', 'R':
			return engine.Command{Kind: engine.CommandRestart}, actionCommand
		case 'c', 'C':
			return engine.Command{Kind: engine.CommandKeepPlaying}, actionCommand
		case 'q', 'Q':
			return engine.Command{}, actionQuit
		}
	}
	return engine.Command{}, actionNone
}

// KeyInput reads commands from the keyboard. It implements
// engine.InputSource.
type KeyInput struct {
	screen   *Screen
	onResize func()

	once   sync.Once
	events chan tcell.Event
	done   chan struct{}
}

var _ engine.InputSource = (*KeyInput)(nil)

// NewKeyInput creates a keyboard source. onResize, if set, runs after the
// screen is resynced.
func NewKeyInput(screen *Screen, onResize func()) *KeyInput {
	return &KeyInput{
		screen:   screen,
		onResize: onResize,
		events:   make(chan tcell.Event),
		done:     make(chan struct{}),
	}
}

func (k *KeyInput) start() {
	go func() {
		defer close(k.events)
		for {
			ev := k.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case k.events <- ev:
			case <-k.done:
				return
			}
		}
	}()
}

// Next blocks until a key maps to a command. Quit keys and a closed screen
// return io.EOF.
func (k *KeyInput) Next(ctx context.Context) (engine.Command, error) {
	k.once.Do(k.start)

	for {
		select {
		case <-ctx.Done():
			return engine.Command{}, ctx.Err()
		case ev, ok := <-k.events:
			if !ok {
				return engine.Command{}, io.EOF
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				cmd, action := mapKey(ev)
				switch action {
				case actionQuit:
					return engine.Command{}, io.EOF
				case actionCommand:
					return cmd, nil
				}
			case *tcell.EventResize:
				k.screen.Sync()
				if k.onResize != nil {
					k.onResize()
				}
			}
		}
	}
}

// Stop releases the polling goroutine.
func (k *KeyInput) Stop() {
	select {
	case <-k.done:
	default:
		close(k.done)
	}
}
