// Package engine provides the rules engine of the Statecraft board game.
//
// The engine package implements:
//   - The turn lifecycle state machine and its ordered reducer pipeline
//   - Movement, weather and role modifiers, and landing resolution
//   - The rent, tax and construction economy under five government regimes
//   - Auctions, bilateral trades, options and company shares
//   - The end-of-turn government cycle and elections
//   - Debts, bankruptcy and ownership transfer
//
// Core Types:
//
// WorldState is the single aggregate root of a game. Transition is a pure
// function from (world, intent, env) to a new world; it clones before it
// mutates, so callers may keep any earlier world for history. Env carries the
// Entropy source and the Tuning constants. GameEngine wraps Transition with a
// serializable seeded entropy source for sessions.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	players := []engine.PlayerSpec{{ID: "ana"}, {ID: "ben"}}
//	gameEngine, err := engine.NewEngine(config, players)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Dispatch(engine.NewIntent(engine.IntentStartGame, nil))
//	gameEngine.Dispatch(engine.NewIntent(engine.IntentRollDice, nil))
//	state := gameEngine.State()
//
// Rules:
//
// Ineligible or forbidden actions never fail: they return a world with a
// denial or policy line in the Log. Unknown intent types return the world
// unchanged. Every transition conserves money except logged minting, which
// CheckInvariants verifies.
package engine
