// Package service provides the business logic layer for the tile merge game.
//
// GameService sits between the transports (HTTP, WebSocket, MCP) and the
// engine. It resolves sessions, turns direction names into engine moves and
// reports each call as a GameSnapshot plus typed GameEvents.
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages variant configuration loading and validation.
//
// Every operation runs under one service-wide lock and opens an
// OpenTelemetry span named "service.<operation>". Sessions are saved after
// each operation that changed the game.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs", logger)
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithLogger(logger))
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		return err
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "left")
//
// Bulk moves:
//
// BulkMove runs at most engine.MaxBulkMoves directions. It stops at the first
// unknown direction (stop code invalid_direction) and before any move once
// the game is over (game_over) or won without keep playing (won).
package service
