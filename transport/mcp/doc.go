// Package mcp exposes the game's REST API as Model Context Protocol tools.
//
// The Client owns an MCP server whose tools proxy to a running API server
// over HTTP, so an agent talks to the same sessions as browsers and
// websocket viewers. Tools:
//   - create_session, list_sessions, get_session, list_configs
//   - game_state: the world as one player sees it
//   - dispatch_intent: send any intent with a free-form payload
//   - undo, redo
//   - game_log: paged event log filtered by kind
//   - describe_tile: ownership, buildings and the current rent quote
//   - game_rules
//
// The server can be served over stdio with server.ServeStdio or mounted on
// an HTTP route that forwards request bodies to HandleMessage.
package mcp
