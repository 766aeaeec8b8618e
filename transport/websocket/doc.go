// Package websocket pushes game snapshots and signals to browser clients.
//
// A central Hub owns every connection. Sessions publish through Hub.Publish,
// which implements session.Notifier and never blocks: snapshots go into a
// buffered queue, and when the queue is full the snapshot is dropped and
// logged. A client that cannot keep up with its own send buffer is
// disconnected.
//
// Clients connect with ?session=<id> and receive one JSON document per frame:
//
//	{
//	  "session_id": "ab12cd34",
//	  "event": "state_update",
//	  "game_state": {...},
//	  "signals": ["wrong_pair"]
//	}
//
// Face-down cards in game_state are masked by the session before publishing.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	sessions := session.NewManager(session.Options{Notifier: hub})
package websocket
