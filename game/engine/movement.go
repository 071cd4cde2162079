package engine

var movementIntents = []string{IntentRollDice, IntentMoveToken, IntentChooseHop, IntentSkipHop, IntentPayBail}

func movementStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentRollDice:
		return rollDice(w, in, env)
	case IntentMoveToken:
		return moveToken(w, in, env)
	case IntentChooseHop:
		return chooseHop(w, in, env)
	case IntentSkipHop:
		return skipHop(w, in)
	case IntentPayBail:
		return payBail(w, in, env)
	}
	return w, false
}

// turnActor resolves the payload player and checks it is the current player
func turnActor(w *WorldState, in Intent, verb string) (*Player, *WorldState, bool) {
	var p playerPayload
	if err := decodePayload(in, &p); err != nil {
		next, _ := deny(w, "%s rejected: %v", verb, err)
		return nil, next, true
	}
	if !ready(w) {
		next, _ := deny(w, "%s rejected: the game is not running", verb)
		return nil, next, true
	}
	pl := w.actor(p.Player)
	if pl == nil || !w.isCurrent(pl) {
		next, _ := deny(w, "%s rejected: it is not %s's turn", verb, p.Player)
		return nil, next, true
	}
	return pl, nil, false
}

func rollDice(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	pl, rejected, done := turnActor(w, in, "Roll")
	if done {
		return rejected, true
	}
	switch {
	case w.Phase != PhaseAwaitingRoll || w.HasRolled:
		return deny(w, "Roll rejected: %s cannot roll now (%s)", pl.Name, w.Phase)
	case w.owes(pl.ID):
		return deny(w, "Roll rejected: %s must settle a debt first", pl.Name)
	}

	next := w.Clone()
	p := next.Current()
	count := 2
	if p.Boosted > 0 {
		count = 3
		p.Boosted--
	}
	dice := make([]int, count)
	total := 0
	for i := range dice {
		dice[i] = rollDie(env.Rand)
		total += dice[i]
	}
	doubles := dice[0] == dice[1]
	next.Dice = dice
	next.HasRolled = true
	next.logf(LogInfo, "%s rolled %v", p.Name, dice)

	if p.JailTurns > 0 {
		switch {
		case doubles:
			p.JailTurns = 0
			next.logf(LogInfo, "%s rolled doubles and walks out of jail", p.Name)
		case p.JailTurns == 1:
			p.JailTurns = 0
			next.charge(p.ID, StateID, env.Tuning.JailBail, 0, 0, "bail")
			next.logf(LogInfo, "%s served the sentence and leaves jail", p.Name)
		default:
			p.JailTurns--
			next.Phase = PhaseTurnEnded
			next.logf(LogInfo, "%s stays in jail (%d turns left)", p.Name, p.JailTurns)
			return next, true
		}
		// leaving jail never grants another roll
		doubles = false
	}

	if doubles {
		next.DoublesCount++
		if next.DoublesCount >= 3 {
			next.logf(LogInfo, "%s rolled three doubles in a row", p.Name)
			if !ConfigFor(next.Regime).JailNullified {
				next.sendToJail(p, env)
				next.settleTurnPhase()
				return next, true
			}
			next.logf(LogPolicy, "Jail is abolished under %s; %s moves on without another roll", next.Regime, p.Name)
			doubles = false
		}
	}
	next.RolledDoubles = doubles

	steps := total + stepModifier(next.Weather, p.Role)
	if steps < 1 {
		steps = 1
	}
	if steps != total {
		next.logf(LogInfo, "%s weather changes the move to %d steps", next.Weather, steps)
	}
	next.PendingMoves = steps
	next.Phase = PhaseMoving
	return next, true
}

func moveToken(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var mp movePayload
	if err := decodePayload(in, &mp); err != nil {
		return deny(w, "Move rejected: %v", err)
	}
	pl, rejected, done := turnActor(w, Intent{Type: in.Type, Payload: map[string]any{"player": mp.Player}}, "Move")
	if done {
		return rejected, true
	}
	if w.Phase != PhaseMoving || w.PendingMoves <= 0 {
		return deny(w, "Move rejected: %s has no pending moves", pl.Name)
	}
	steps := mp.Steps
	if steps <= 0 || steps > w.PendingMoves {
		steps = w.PendingMoves
	}

	next := w.Clone()
	p := next.Current()
	next.advance(p, steps, env)
	next.PendingMoves -= steps
	if next.PendingMoves > 0 {
		return next, true
	}
	next.resolveLanding(p, env, 0)
	next.settleTurnPhase()
	return next, true
}

// advance walks a token forward, paying the start payout on every wrap
func (w *WorldState) advance(p *Player, steps int, env Env) {
	n := len(w.Tiles)
	if n == 0 {
		return
	}
	target := p.Position + steps
	laps := target / n
	p.Position = target % n
	for i := 0; i < laps; i++ {
		w.payFromTreasury(p.ID, env.Tuning.GoPayout, "start payout")
		w.logf(LogMoney, "%s passed %s and collected %d", p.Name, w.Tiles[0].Name, env.Tuning.GoPayout)
	}
}

// teleport places a token without any payout
func (w *WorldState) teleport(p *Player, tileID int) {
	p.Position = tileID
	w.logf(LogInfo, "%s moves to %s", p.Name, w.Tiles[tileID].Name)
}

func (w *WorldState) sendToJail(p *Player, env Env) {
	jail := w.firstTileOfType(TileJail)
	if jail < 0 {
		return
	}
	p.Position = jail
	p.JailTurns = env.Tuning.JailTurns
	w.DoublesCount = 0
	w.RolledDoubles = false
	w.ExtraTurn = false
	w.PendingMoves = 0
	w.MovementOptions = nil
	w.logf(LogInfo, "%s is sent to %s", p.Name, w.Tiles[jail].Name)
}

// resolveLanding applies everything that happens on the tile under the player
func (w *WorldState) resolveLanding(p *Player, env Env, depth int) {
	t := &w.Tiles[p.Position]
	w.logf(LogInfo, "%s landed on %s", p.Name, t.Name)

	applyRolePassives(w, p, t, env)

	if t.Reroute && depth < MaxRerouteHops && chance(env.Rand, env.Tuning.RerouteChance) {
		if dest := w.rerouteTarget(p, env); dest >= 0 && dest != p.Position {
			w.logf(LogInfo, "%s is rerouted from %s", p.Name, t.Name)
			w.teleport(p, dest)
			w.resolveLanding(p, env, depth+1)
			return
		}
	}

	switch t.Type {
	case TileProperty, TileTransit, TileUtility:
		w.landOnAsset(p, t, env)
	case TileTax:
		due := TaxDue(w, t, p)
		w.charge(p.ID, StateID, due, 0, due/2, t.Name)
	case TileGoToJail:
		if ConfigFor(w.Regime).JailNullified {
			w.logf(LogPolicy, "No one enforces %s under %s; %s walks on", t.Name, w.Regime, p.Name)
			return
		}
		w.sendToJail(p, env)
	case TileEvent:
		drawEvent(w, p, env, depth)
	case TileCasino:
		w.Minigame = &MinigameStake{Kind: MinigameCasino, PlayerID: p.ID, TileID: t.ID}
		w.logf(LogInfo, "%s may place a wager at %s", p.Name, t.Name)
	case TileSlots:
		w.Minigame = &MinigameStake{Kind: MinigameSlots, PlayerID: p.ID, TileID: t.ID}
		w.logf(LogInfo, "%s may place a wager at %s", p.Name, t.Name)
	case TilePark:
		w.logf(LogInfo, "%s rests in %s", p.Name, t.Name)
	}
}

// landOnAsset handles purchasable tiles: offer, rent and the transit hop menu
func (w *WorldState) landOnAsset(p *Player, t *Tile, env Env) {
	switch t.Owner.Kind {
	case OwnerNone:
		id := t.ID
		w.PendingPurchase = &id
		w.logf(LogInfo, "%s may buy %s for %d", p.Name, t.Name, t.Price)
		return
	case OwnerEscrow:
		return
	}

	if !t.Owner.IsPlayer(p.ID) && t.OccupiedBy != p.ID {
		quote := QuoteRent(w, t.ID, sumDice(w.Dice))
		creditor := ownerAccount(t.Owner)
		switch {
		case quote.Exempt:
			if w.pay(StateID, creditor, quote.Subsidy) {
				w.logf(LogPolicy, "%s is exempt on %s; the state pays %s %d", p.Name, t.Name, w.nameOf(creditor), quote.Subsidy)
			} else {
				w.logf(LogPolicy, "%s is exempt on %s; the treasury cannot fund the subsidy", p.Name, t.Name)
			}
		case quote.Total() > 0:
			w.charge(p.ID, creditor, quote.Total(), quote.Surcharge, 0, "rent on "+t.Name)
		case quote.Reason != "":
			w.logf(LogInfo, "No rent on %s: %s", t.Name, quote.Reason)
		}
	}

	if t.Type == TileTransit && !w.HopUsed {
		owner := w.Player(t.Owner.PlayerID)
		if t.Owner.IsPlayer(p.ID) || (owner != nil && traitsFor(owner.Role).HubAccess) {
			w.MovementOptions = nil
			for i := range w.Tiles {
				if w.Tiles[i].Type == TileTransit && i != t.ID {
					w.MovementOptions = append(w.MovementOptions, i)
				}
			}
			if len(w.MovementOptions) > 0 {
				w.logf(LogInfo, "%s may hop to another station", p.Name)
			}
		}
	}
}

func sumDice(dice []int) int {
	total := 0
	for _, d := range dice {
		total += d
	}
	return total
}

// rerouteOutcome is one weighted destination of a reroute
type rerouteOutcome struct {
	Type   TileType
	Weight int
	// Contraband restricts the outcome to players carrying contraband
	Contraband bool
}

var rerouteOutcomes = []rerouteOutcome{
	{Type: TileStart, Weight: 3},
	{Type: TilePark, Weight: 2},
	{Type: TileCasino, Weight: 2},
	{Type: TileEvent, Weight: 2},
	{Type: TileJail, Weight: 3, Contraband: true},
}

// rerouteTarget picks a weighted destination; -1 when no outcome applies
func (w *WorldState) rerouteTarget(p *Player, env Env) int {
	type candidate struct{ tile, weight int }
	var candidates []candidate
	total := 0
	for _, o := range rerouteOutcomes {
		if o.Contraband && p.Contraband == 0 {
			continue
		}
		id := w.firstTileOfType(o.Type)
		if o.Type == TileEvent {
			id = w.otherTileOfType(o.Type, p.Position)
		}
		if id < 0 {
			continue
		}
		candidates = append(candidates, candidate{id, o.Weight})
		total += o.Weight
	}
	if total == 0 {
		return -1
	}
	roll := env.Rand.Intn(total)
	for _, c := range candidates {
		if roll < c.weight {
			return c.tile
		}
		roll -= c.weight
	}
	return -1
}

func (w *WorldState) otherTileOfType(t TileType, not int) int {
	for i := range w.Tiles {
		if w.Tiles[i].Type == t && i != not {
			return i
		}
	}
	return -1
}

func chooseHop(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var tp tilePayload
	if err := decodePayload(in, &tp); err != nil {
		return deny(w, "Hop rejected: %v", err)
	}
	pl, rejected, done := turnActor(w, Intent{Type: in.Type, Payload: map[string]any{"player": tp.Player}}, "Hop")
	if done {
		return rejected, true
	}
	if !containsInt(w.MovementOptions, tp.Tile) {
		return deny(w, "Hop rejected: %s cannot hop to tile %d", pl.Name, tp.Tile)
	}
	next := w.Clone()
	p := next.Current()
	next.MovementOptions = nil
	next.HopUsed = true
	next.teleport(p, tp.Tile)
	next.resolveLanding(p, env, 0)
	next.settleTurnPhase()
	return next, true
}

func skipHop(w *WorldState, in Intent) (*WorldState, bool) {
	pl, rejected, done := turnActor(w, in, "Skip hop")
	if done {
		return rejected, true
	}
	if len(w.MovementOptions) == 0 {
		return w, true
	}
	next := w.Clone()
	next.MovementOptions = nil
	next.HopUsed = true
	next.logf(LogInfo, "%s stays at the station", pl.Name)
	next.settleTurnPhase()
	return next, true
}

func payBail(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	pl, rejected, done := turnActor(w, in, "Bail")
	if done {
		return rejected, true
	}
	if pl.JailTurns == 0 {
		return deny(w, "Bail rejected: %s is not in jail", pl.Name)
	}
	if w.HasRolled {
		return deny(w, "Bail rejected: %s already rolled this turn", pl.Name)
	}
	next := w.Clone()
	p := next.Current()
	if ConfigFor(next.Regime).JailNullified {
		p.JailTurns = 0
		next.logf(LogPolicy, "Nobody guards the jail under %s; %s walks free", next.Regime, p.Name)
		return next, true
	}
	if !next.pay(p.ID, StateID, env.Tuning.JailBail) {
		return deny(w, "Bail rejected: %s cannot afford %d", pl.Name, env.Tuning.JailBail)
	}
	p.JailTurns = 0
	next.logf(LogMoney, "%s paid %d bail", p.Name, env.Tuning.JailBail)
	return next, true
}
