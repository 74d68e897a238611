// Package api provides the HTTP REST API for the tile merge game.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/move - {"direction": "up|right|down|left"}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left", ...]}
//   - POST /api/sessions/{id}/restart - Start over, keeping the best score
//   - POST /api/sessions/{id}/keep-playing - Continue after reaching the win tile
//
// Configuration:
//   - GET /api/configs - List variants
//   - GET /api/configs/{name} - Get one variant
//   - POST /api/configs - Save a variant
//
// Other:
//   - GET /api/health - Liveness
//   - GET /ws?session=<id> - WebSocket board updates
//
// Errors are returned as {"error": "..."}. Unknown sessions and variants map
// to 404, bad directions and invalid variants to 400.
package api
