// Package api serves the game over HTTP.
//
// Every game action is an intent posted to a session; the engine decides
// whether it applies. Responses carry the public view of the world, and
// players fetch their own view with ?viewer=.
//
// Sessions:
//   - POST   /api/sessions                {"config_id": "quick", "players": [{"id": "ana"}, {"id": "ben"}]}
//   - GET    /api/sessions                ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Play:
//   - POST /api/sessions/{id}/intents     {"type": "ROLL_DICE", "payload": {...}}
//   - POST /api/sessions/{id}/undo        ?viewer=
//   - POST /api/sessions/{id}/redo        ?viewer=
//   - GET  /api/sessions/{id}/state       ?viewer=
//   - GET  /api/sessions/{id}/log         ?page=&limit=&kind=denied
//
// Boards:
//   - GET  /api/configs
//   - GET  /api/configs/{name}
//   - POST /api/configs
//
// Push updates: GET /ws?session={id}&player={id}
//
// Intents are rate limited per session; a client over its budget gets 429.
// Missing sessions and boards answer 404, invalid boards or seats 400, and an
// empty undo or redo stack 409.
package api
