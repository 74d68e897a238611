// Package websocket pushes board updates to browsers watching a session.
//
// A Hub owns every connection. Clients join a session with ?session=<id>
// and only receive that session's messages. Hub.Actuator returns the
// engine.Actuator for one session's game: each published move becomes an
// "actuate" message carrying the tile view (positions, previous positions,
// merge sources) and the metadata; KeepPlaying and Restart send "continue".
//
// The actuator copies the board before queueing and never waits on the
// network. When the queue is full the message is dropped and logged.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	manager := session.NewManager(session.WithActuatorFactory(hub.Actuator))
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
