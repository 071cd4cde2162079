package engine

import "sort"

var lifecycleIntents = []string{
	IntentStartGame, IntentEndTurn, IntentRestoreState,
	IntentDebugMoney, IntentDebugTeleport, IntentLogMessage,
}

func lifecycleStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentRestoreState:
		if in.State == nil {
			return deny(w, "Restore rejected: no state supplied")
		}
		return in.State.Clone(), true
	case IntentLogMessage:
		var p messagePayload
		if err := decodePayload(in, &p); err != nil || p.Message == "" {
			return w, true
		}
		next := w.Clone()
		next.logf(LogInfo, "%s", p.Message)
		return next, true
	case IntentStartGame:
		return startGame(w, env)
	case IntentEndTurn:
		return endTurn(w, in, env)
	case IntentDebugMoney:
		return debugSetMoney(w, in)
	case IntentDebugTeleport:
		return debugTeleport(w, in)
	}
	return w, false
}

// startGame orders the seats by a roll-off and deals secret roles
func startGame(w *WorldState, env Env) (*WorldState, bool) {
	if w.Started {
		return deny(w, "The game has already started")
	}
	if len(w.Players) < MinPlayers {
		return deny(w, "At least %d players are needed to start", MinPlayers)
	}
	next := w.Clone()

	rolls := make(map[string]int, len(next.Players))
	for _, p := range next.Players {
		rolls[p.ID] = rollDie(env.Rand) + rollDie(env.Rand)
	}
	sort.SliceStable(next.Players, func(i, j int) bool {
		return rolls[next.Players[i].ID] > rolls[next.Players[j].ID]
	})

	pool := append([]Role(nil), AllRoles...)
	for i := len(pool) - 1; i > 0; i-- {
		j := env.Rand.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	dealt := 0
	for i := range next.Players {
		p := &next.Players[i]
		if p.Role == "" {
			p.Role = pool[dealt%len(pool)]
			dealt++
		}
		if p.Role == RoleDealer {
			p.Contraband += env.Tuning.DealerStartingStock
		}
	}

	next.Started = true
	next.Phase = PhaseAwaitingRoll
	next.Turn = 1
	next.CurrentPlayerIndex = 0
	next.logf(LogInfo, "Game started; %s rolled highest and goes first", next.Players[0].Name)
	return next, true
}

func endTurn(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var p playerPayload
	if err := decodePayload(in, &p); err != nil {
		return deny(w, "End turn rejected: %v", err)
	}
	if !ready(w) {
		return deny(w, "End turn rejected: the game is not running")
	}
	cur := w.Current()
	if p.Player != "" && (cur == nil || p.Player != cur.ID) {
		return deny(w, "End turn rejected: it is not %s's turn", p.Player)
	}
	switch {
	case !w.HasRolled:
		return deny(w, "End turn rejected: %s has not rolled", cur.Name)
	case w.Debt != nil:
		return deny(w, "End turn rejected: %s still owes %d", w.nameOf(w.Debt.Debtor), w.Debt.Amount)
	case w.Auction != nil:
		return deny(w, "End turn rejected: an auction is still open")
	case w.Phase != PhaseTurnEnded:
		return deny(w, "End turn rejected: a decision is pending (%s)", w.Phase)
	}

	next := w.Clone()
	next.logf(LogInfo, "%s ended turn %d", cur.Name, next.Turn)
	runGovernmentCycle(next, env)
	if next.Phase == PhaseGameOver {
		return next, true
	}
	next.advanceTurn()
	return next, true
}

// advanceTurn hands the turn to the next alive player, consuming skip counters
// of the players it bypasses
func (w *WorldState) advanceTurn() {
	n := len(w.Players)
	if n == 0 || w.checkGameOver() {
		return
	}
	idx := w.CurrentPlayerIndex
	for guard := 0; guard < n*64; guard++ {
		idx = (idx + 1) % n
		p := &w.Players[idx]
		if !p.Alive {
			continue
		}
		if p.SkipTurns > 0 {
			p.SkipTurns--
			w.logf(LogInfo, "%s sits this turn out (%d more)", p.Name, p.SkipTurns)
			continue
		}
		w.CurrentPlayerIndex = idx
		break
	}

	w.Turn++
	w.Phase = PhaseAwaitingRoll
	w.HasRolled = false
	w.Dice = nil
	w.PendingMoves = 0
	w.MovementOptions = nil
	w.HopUsed = false
	w.DoublesCount = 0
	w.RolledDoubles = false
	w.ExtraTurn = false
	w.PendingPurchase = nil
	w.logf(LogInfo, "It is %s's turn", w.Current().Name)
}

// checkGameOver ends the game when at most one player remains
func (w *WorldState) checkGameOver() bool {
	if !w.Started || w.Phase == PhaseGameOver {
		return w.Phase == PhaseGameOver
	}
	if w.AliveCount() > 1 {
		return false
	}
	w.Phase = PhaseGameOver
	for _, p := range w.Players {
		if p.Alive {
			w.Winner = p.ID
			w.logf(LogInfo, "%s wins the game", p.Name)
		}
	}
	return true
}

// debugSetMoney overwrites a balance; the difference is booked as minted money
func debugSetMoney(w *WorldState, in Intent) (*WorldState, bool) {
	var p amountPayload
	if err := decodePayload(in, &p); err != nil {
		return deny(w, "Debug rejected: %v", err)
	}
	if w.actor(p.Player) == nil || p.Amount < 0 {
		return deny(w, "Debug rejected: unknown player or negative amount")
	}
	next := w.Clone()
	pl := next.actor(p.Player)
	delta := p.Amount - pl.Money
	pl.Money = p.Amount
	next.Minted += delta
	next.logf(LogMint, "Debug: %s's balance set to %d (%+d)", pl.Name, p.Amount, delta)
	return next, true
}

func debugTeleport(w *WorldState, in Intent) (*WorldState, bool) {
	var p tilePayload
	if err := decodePayload(in, &p); err != nil {
		return deny(w, "Debug rejected: %v", err)
	}
	if w.actor(p.Player) == nil || w.Tile(p.Tile) == nil {
		return deny(w, "Debug rejected: unknown player or tile")
	}
	next := w.Clone()
	pl := next.actor(p.Player)
	pl.Position = p.Tile
	next.logf(LogInfo, "Debug: %s teleported to %s", pl.Name, next.Tiles[p.Tile].Name)
	return next, true
}
