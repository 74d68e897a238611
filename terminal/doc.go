// Package terminal plays the game in a terminal using tcell.
//
// Renderer is the engine.Actuator that draws the board, score and best
// score; KeyInput is the engine.InputSource that maps keys to commands:
//
//	arrows, w/a/s/d, h/j/k/l   slide
//	r                          restart
//	c                          keep playing after a win
//	q, Esc, Ctrl-C             quit
package terminal
