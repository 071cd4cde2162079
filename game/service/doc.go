// Package service is the business layer between the transports and the
// rules engine.
//
// GameService owns sessions, each wrapping one engine.GameEngine, and
// exposes intent dispatch, per-player views, the paginated game log,
// undo/redo and board configuration management. Every dispatch for a
// session runs under that session's lock, so transitions are applied in
// arrival order.
//
// Undo history is kept per session: the world is snapshotted each time
// play passes to another player or turn, and Undo/Redo hand a snapshot
// back to the engine as a RESTORE_STATE intent.
//
// Auction timers live outside the world. AuctionClock calls TickAuctions
// on a fixed interval and each open auction receives an AUCTION_TICK.
//
// Usage:
//
//	sessions := session.NewManager()
//	configs, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessions, configs, service.WithLogger(logs.L()))
//
//	info, err := svc.CreateSession(ctx, "classic", []engine.PlayerSpec{{ID: "ana"}, {ID: "ben"}})
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := svc.Dispatch(ctx, info.ID, engine.NewIntent(engine.IntentStartGame, nil))
package service
