package engine

var propertyIntents = []string{
	IntentBuyProperty, IntentDeclineProperty, IntentMortgage, IntentUnmortgage,
	IntentBuildHouse, IntentSellHouse, IntentSellToState, IntentRepair,
	IntentWriteOption, IntentExerciseOption,
}

func propertyStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentBuyProperty:
		return buyProperty(w, in)
	case IntentDeclineProperty:
		return declineProperty(w, in, env)
	case IntentWriteOption:
		return writeOption(w, in, env)
	case IntentExerciseOption:
		return exerciseOption(w, in)
	case IntentMortgage, IntentUnmortgage, IntentBuildHouse, IntentSellHouse, IntentSellToState, IntentRepair:
		return manageTile(w, in, env)
	}
	return w, false
}

func buyProperty(w *WorldState, in Intent) (*WorldState, bool) {
	pl, rejected, done := turnActor(w, in, "Purchase")
	if done {
		return rejected, true
	}
	if w.PendingPurchase == nil || *w.PendingPurchase != pl.Position {
		return deny(w, "Purchase rejected: nothing is on offer to %s", pl.Name)
	}
	t := w.Tiles[*w.PendingPurchase]
	if pl.Money < t.Price {
		return deny(w, "Purchase rejected: %s cannot afford %s (%d)", pl.Name, t.Name, t.Price)
	}
	next := w.Clone()
	next.pay(pl.ID, StateID, t.Price)
	next.setOwner(t.ID, playerOwner(pl.ID))
	next.PendingPurchase = nil
	next.logf(LogMoney, "%s bought %s for %d", pl.Name, t.Name, t.Price)
	next.settleTurnPhase()
	return next, true
}

// declineProperty passes on an offer: under a decline-to-state regime the state
// takes the tile, otherwise it goes to auction
func declineProperty(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	pl, rejected, done := turnActor(w, in, "Decline")
	if done {
		return rejected, true
	}
	if w.PendingPurchase == nil {
		return deny(w, "Decline rejected: nothing is on offer to %s", pl.Name)
	}
	next := w.Clone()
	tileID := *next.PendingPurchase
	t := &next.Tiles[tileID]
	next.PendingPurchase = nil
	next.logf(LogInfo, "%s declined %s", pl.Name, t.Name)

	switch {
	case ConfigFor(next.Regime).DeclineToState:
		bid := t.Price * env.Tuning.DeclineStateBidPct / 100
		next.setOwner(tileID, stateOwner)
		share := next.redistribute(bid)
		next.logf(LogPolicy, "The state takes %s at %d and pays %d to each citizen", t.Name, bid, share)
	case next.Auction == nil:
		next.openAuction(&Auction{Kind: AuctionTile, TileIDs: []int{tileID}}, env)
	default:
		next.logf(LogInfo, "%s stays on the market", t.Name)
	}
	next.settleTurnPhase()
	return next, true
}

// manageTile covers the owner-side tile operations
func manageTile(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var tp tilePayload
	if err := decodePayload(in, &tp); err != nil {
		return deny(w, "%s rejected: %v", in.Type, err)
	}
	pl := w.actor(tp.Player)
	t := w.Tile(tp.Tile)
	if !ready(w) || pl == nil || !pl.Alive {
		return deny(w, "%s rejected: unknown player", in.Type)
	}
	if t == nil || !t.Owner.IsPlayer(pl.ID) {
		return deny(w, "%s rejected: %s does not own tile %d", in.Type, pl.Name, tp.Tile)
	}
	if w.Auction != nil && containsInt(w.Auction.TileIDs, t.ID) {
		return deny(w, "%s rejected: %s is under auction", in.Type, t.Name)
	}

	switch in.Type {
	case IntentMortgage:
		return mortgage(w, pl, t)
	case IntentUnmortgage:
		return unmortgage(w, pl, t, env)
	case IntentBuildHouse:
		return buildHouse(w, pl, t, env)
	case IntentSellHouse:
		return sellHouse(w, pl, t, env)
	case IntentSellToState:
		return sellToState(w, pl, t, env)
	case IntentRepair:
		return repair(w, pl, t, env)
	}
	return w, true
}

func mortgage(w *WorldState, pl *Player, t *Tile) (*WorldState, bool) {
	value := MortgageValue(t)
	switch {
	case t.Mortgaged:
		return deny(w, "Mortgage rejected: %s is already mortgaged", t.Name)
	case t.Developed():
		return deny(w, "Mortgage rejected: sell the buildings on %s first", t.Name)
	case t.Broken:
		return deny(w, "Mortgage rejected: %s needs repair", t.Name)
	case w.Treasury < value:
		return deny(w, "Mortgage rejected: the treasury cannot lend %d", value)
	}
	next := w.Clone()
	nt := next.Tile(t.ID)
	next.pay(StateID, pl.ID, value)
	nt.Mortgaged = true
	nt.MortgagePrincipal = value
	next.logf(LogMoney, "%s mortgaged %s for %d", pl.Name, nt.Name, value)
	next.afterLiquidity()
	return next, true
}

func unmortgage(w *WorldState, pl *Player, t *Tile, env Env) (*WorldState, bool) {
	if !t.Mortgaged {
		return deny(w, "Unmortgage rejected: %s is not mortgaged", t.Name)
	}
	cost := UnmortgageCost(t, env.Tuning)
	if pl.Money < cost {
		return deny(w, "Unmortgage rejected: %s needs %d", pl.Name, cost)
	}
	next := w.Clone()
	nt := next.Tile(t.ID)
	next.pay(pl.ID, StateID, cost)
	nt.Mortgaged = false
	nt.MortgagePrincipal = 0
	next.logf(LogMoney, "%s lifted the mortgage on %s for %d", pl.Name, nt.Name, cost)
	return next, true
}

func buildHouse(w *WorldState, pl *Player, t *Tile, env Env) (*WorldState, bool) {
	switch {
	case t.Type != TileProperty:
		return deny(w, "Build rejected: %s cannot be developed", t.Name)
	case t.Hotel:
		return deny(w, "Build rejected: %s already has a hotel", t.Name)
	case t.Broken:
		return deny(w, "Build rejected: %s needs repair", t.Name)
	case !w.ownsFullGroup(t.Owner, t.Group):
		return deny(w, "Build rejected: %s does not own the whole %s group", pl.Name, t.Group)
	case w.owes(pl.ID):
		return deny(w, "Build rejected: %s must settle a debt first", pl.Name)
	}
	for _, id := range w.groupTiles(t.Group) {
		if w.Tiles[id].Mortgaged {
			return deny(w, "Build rejected: %s is mortgaged", w.Tiles[id].Name)
		}
	}
	cost, imported, reason := ConstructionCost(w, t, pl.Role, env.Tuning)
	if reason != "" {
		return forbid(w, "Build rejected under %s: %s", w.Regime, reason)
	}
	if pl.Money < cost {
		return deny(w, "Build rejected: %s needs %d", pl.Name, cost)
	}

	next := w.Clone()
	nt := next.Tile(t.ID)
	next.pay(pl.ID, StateID, cost)
	if nt.Houses == MaxHouses {
		nt.Houses = 0
		nt.Hotel = true
		next.Bank.Houses += MaxHouses
		if !imported {
			next.Bank.Hotels--
		}
		next.logf(LogMoney, "%s built a hotel on %s for %d", pl.Name, nt.Name, cost)
	} else {
		nt.Houses++
		if !imported {
			next.Bank.Houses--
		}
		next.logf(LogMoney, "%s built house %d on %s for %d", pl.Name, nt.Houses, nt.Name, cost)
	}
	if imported {
		next.logf(LogPolicy, "Shortage surcharge applied under %s", next.Regime)
	}
	return next, true
}

func sellHouse(w *WorldState, pl *Player, t *Tile, env Env) (*WorldState, bool) {
	refund := t.HouseCost * env.Tuning.HouseResalePct / 100
	switch {
	case !t.Developed():
		return deny(w, "Sale rejected: %s has no buildings", t.Name)
	case t.Broken:
		return deny(w, "Sale rejected: %s needs repair", t.Name)
	case t.Hotel && w.Bank.Houses < MaxHouses:
		return deny(w, "Sale rejected: the bank cannot break the hotel on %s into houses", t.Name)
	case w.Treasury < refund:
		return deny(w, "Sale rejected: the treasury cannot pay %d", refund)
	}
	next := w.Clone()
	nt := next.Tile(t.ID)
	if nt.Hotel {
		nt.Hotel = false
		nt.Houses = MaxHouses
		next.Bank.Hotels++
		next.Bank.Houses -= MaxHouses
	} else {
		nt.Houses--
		next.Bank.Houses++
	}
	next.pay(StateID, pl.ID, refund)
	next.logf(LogMoney, "%s sold a building on %s for %d", pl.Name, nt.Name, refund)
	next.afterLiquidity()
	return next, true
}

func sellToState(w *WorldState, pl *Player, t *Tile, env Env) (*WorldState, bool) {
	price := t.Price * env.Tuning.StateBuybackPct / 100
	switch {
	case t.Developed():
		return deny(w, "Sale rejected: sell the buildings on %s first", t.Name)
	case t.Mortgaged:
		return deny(w, "Sale rejected: %s is mortgaged", t.Name)
	case w.optionOn(t.ID) != nil:
		return deny(w, "Sale rejected: %s carries an option", t.Name)
	case w.Treasury < price:
		return deny(w, "Sale rejected: the treasury cannot pay %d", price)
	}
	next := w.Clone()
	next.pay(StateID, pl.ID, price)
	next.setOwner(t.ID, stateOwner)
	next.logf(LogMoney, "%s sold %s to the state for %d", pl.Name, t.Name, price)
	next.afterLiquidity()
	return next, true
}

func repair(w *WorldState, pl *Player, t *Tile, env Env) (*WorldState, bool) {
	if !t.Broken {
		return deny(w, "Repair rejected: %s is not damaged", t.Name)
	}
	if pl.Money < env.Tuning.RepairCost {
		return deny(w, "Repair rejected: %s needs %d", pl.Name, env.Tuning.RepairCost)
	}
	next := w.Clone()
	next.pay(pl.ID, StateID, env.Tuning.RepairCost)
	next.Tile(t.ID).Broken = false
	next.logf(LogMoney, "%s repaired %s for %d", pl.Name, t.Name, env.Tuning.RepairCost)
	return next, true
}

func writeOption(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var op optionPayload
	if err := decodePayload(in, &op); err != nil {
		return deny(w, "Option rejected: %v", err)
	}
	pl := w.actor(op.Player)
	t := w.Tile(op.Tile)
	switch {
	case !ready(w) || pl == nil || !pl.Alive:
		return deny(w, "Option rejected: unknown player")
	case t == nil || !t.Owner.IsPlayer(pl.ID):
		return deny(w, "Option rejected: %s does not own tile %d", pl.Name, op.Tile)
	case w.optionOn(t.ID) != nil:
		return deny(w, "Option rejected: %s already carries an option", t.Name)
	case op.Strike <= 0:
		return deny(w, "Option rejected: the strike must be positive")
	}
	turns := op.Turns
	if turns <= 0 {
		turns = env.Tuning.OptionTurns
	}
	next := w.Clone()
	id := next.newID("opt")
	next.Options = append(next.Options, Option{ID: id, TileID: t.ID, Writer: pl.ID, Holder: pl.ID, Strike: op.Strike, TurnsLeft: turns})
	next.logf(LogInfo, "%s wrote option %s on %s at %d", pl.Name, id, t.Name, op.Strike)
	return next, true
}

func exerciseOption(w *WorldState, in Intent) (*WorldState, bool) {
	var op optionPayload
	if err := decodePayload(in, &op); err != nil {
		return deny(w, "Exercise rejected: %v", err)
	}
	pl := w.actor(op.Player)
	o := w.option(op.Option)
	switch {
	case !ready(w) || pl == nil || !pl.Alive:
		return deny(w, "Exercise rejected: unknown player")
	case o == nil || o.Holder != pl.ID || o.Writer == pl.ID:
		return deny(w, "Exercise rejected: %s holds no option %s", pl.Name, op.Option)
	case o.TurnsLeft <= 0:
		return deny(w, "Exercise rejected: option %s has expired", o.ID)
	case w.optionListed(o.ID):
		return deny(w, "Exercise rejected: option %s is up for auction", o.ID)
	}
	t := w.Tile(o.TileID)
	switch {
	case !t.Owner.IsPlayer(o.Writer):
		return deny(w, "Exercise rejected: the writer no longer owns %s", t.Name)
	case t.Developed():
		return deny(w, "Exercise rejected: %s carries buildings", t.Name)
	case pl.Money < o.Strike:
		return deny(w, "Exercise rejected: %s cannot pay the strike of %d", pl.Name, o.Strike)
	}
	next := w.Clone()
	next.pay(pl.ID, o.Writer, o.Strike)
	next.setOwner(t.ID, playerOwner(pl.ID))
	next.removeOption(o.ID)
	next.logf(LogTrade, "%s exercised option %s and takes %s for %d", pl.Name, o.ID, t.Name, o.Strike)
	return next, true
}

// afterLiquidity settles a pending debt the debtor can now cover
func (w *WorldState) afterLiquidity() {
	if w.Debt == nil || w.balance(w.Debt.Debtor) < w.Debt.Amount {
		return
	}
	d := *w.Debt
	w.Debt = nil
	w.settle(d)
	w.logf(LogMoney, "%s settled the debt of %d to %s", w.nameOf(d.Debtor), d.Amount, w.nameOf(d.Creditor))
	w.promoteDebt()
	w.settleTurnPhase()
}
