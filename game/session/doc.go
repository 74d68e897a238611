// Package session provides session management for the tile merge game.
//
// Manager keeps one engine.Game per session, keyed by a case-insensitive ID.
// Generated IDs are the first eight hex characters of a random UUID.
//
// Persistence:
//
// A SessionPersistence stores PersistedSessionData records: the variant name,
// timestamps, the best score and the serialized game (nil once the game is
// over). Two backends exist:
//
//   - FilePersistence writes one JSON file per session, atomically.
//   - PostgresPersistence upserts rows into a tile_sessions table via pgx.
//
// Records do not carry the variant rules. On load the Manager resolves the
// variant through its ConfigManager and rebuilds the game, so a stored board
// that no longer fits its variant is discarded by the engine.
//
// Usage:
//
//	fp, _ := session.NewFilePersistence("sessions")
//	manager := session.NewManagerWithPersistence(fp, configs,
//		session.WithLogger(logger),
//		session.WithActuatorFactory(hub.Actuator),
//	)
//	sess, err := manager.Create("", "classic", cfg)
package session
