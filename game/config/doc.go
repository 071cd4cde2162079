// Package config loads board configurations for the game server.
//
// A board lives in the config directory as <name>.json: the tiles in
// board order, starting money and treasury, companies and an optional
// "tuning" object. Omitted tuning keys keep the engine defaults. A sibling
// <name>.tuning.yaml, when present, is decoded over the result, so
// probabilities and timers can be adjusted without touching the board.
//
// Every board is validated with engine.ValidateGameConfig before it is
// cached. classic.json is the default; when it is missing the first valid
// board is used, and an empty directory falls back to the built-in classic
// board.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	board, err := manager.LoadConfig("quick")
package config
