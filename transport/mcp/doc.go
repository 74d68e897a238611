// Package mcp exposes the tile merge game to AI agents over the Model
// Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API served by package api, and the JSON reply is rendered as plain text
// with the board drawn as a grid of values ('.' for empty cells).
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state: board, score, best score and possible moves
//   - move, bulk_move: slides, each taking an 'intent' string for the caller
//   - restart_game, keep_playing
//   - list_configs, game_instructions
//   - describe_cell: value, neighbours and merging slides for one cell
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", mcp.WithLogger(logger))
//	server.ServeStdio(client.GetMCPServer())
package mcp
