// Package engine implements the sliding-tile merge game.
//
// A Game owns an N×N Board of numbered tiles. Each Move slides every tile as
// far as it can towards one of the four directions, merging equal neighbours
// into a tile of double value (at most once per destination cell per move),
// then spawns a new 2 or 4 on a random empty cell. Reaching the configured
// win value sets Won; a full board without adjacent equal tiles sets Over.
//
// The engine talks to three collaborators:
//
//   - Storage persists the current GameState and the best score.
//   - Actuator receives the board and Metadata after every published move.
//   - InputSource yields Commands that Game.Run dispatches.
//
// Usage:
//
//	game, err := engine.NewGame(engine.DefaultConfig(),
//		engine.WithStorage(store),
//		engine.WithActuator(renderer),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result := game.Move(engine.Left)
//	if result.Moved {
//		fmt.Println("score", game.Score())
//	}
//
// A Game is not safe for concurrent use; hosts that share one across
// goroutines serialize access themselves.
package engine
