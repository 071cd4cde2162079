// Package websocket pushes game updates to browsers and bots.
//
// A Hub owns every connection. Clients attach to one session through
// /ws?session=<id>&player=<id>; the player is optional and an absent one
// makes the client a spectator. Every state broadcast is filtered with
// engine.ViewFor per client, so roles, contraband stashes and sealed bids
// of other players never leave the server.
//
// Outgoing messages are JSON:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "auction_tick", "data": {"resolved": true}}
//
// Incoming frames are ignored; actions go through the REST API.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	hub.BroadcastState(sessionID, state)
package websocket
