package engine

// passive is a role trigger evaluated when its holder lands on a tile
type passive func(w *WorldState, p *Player, t *Tile, env Env)

var rolePassives = map[Role][]passive{
	RoleSquatter: {squatterClaim},
	RoleSaboteur: {saboteurStrike},
}

// everyonePassives run for every role
var everyonePassives = []passive{addictionAccrual}

func applyRolePassives(w *WorldState, p *Player, t *Tile, env Env) {
	for _, fn := range rolePassives[p.Role] {
		fn(w, p, t, env)
	}
	for _, fn := range everyonePassives {
		fn(w, p, t, env)
	}
}

// squatterClaim occupies an unguarded state tile and collects a claim from the treasury
func squatterClaim(w *WorldState, p *Player, t *Tile, env Env) {
	if t.Owner.Kind != OwnerState || t.OccupiedBy != "" {
		return
	}
	t.OccupiedBy = p.ID
	t.EvictionTimer = env.Tuning.EvictionTurns
	if w.pay(StateID, p.ID, env.Tuning.SquatterClaim) {
		w.logf(LogMoney, "Squatters occupy %s and the state pays a %d claim", t.Name, env.Tuning.SquatterClaim)
		return
	}
	w.logf(LogInfo, "Squatters occupy %s", t.Name)
}

// saboteurStrike damages a developed rival tile when the cooldown allows
func saboteurStrike(w *WorldState, p *Player, t *Tile, env Env) {
	if t.Owner.Kind != OwnerPlayer || t.Owner.PlayerID == p.ID || !t.Developed() || t.Broken {
		return
	}
	if p.cooldown(cooldownSabotage) > 0 {
		return
	}
	t.Broken = true
	p.setCooldown(cooldownSabotage, env.Tuning.SabotageCooldown)
	w.logf(LogInfo, "Structural damage reported at %s", t.Name)
}

// addictionAccrual hooks visitors of a dealer's tile
func addictionAccrual(w *WorldState, p *Player, t *Tile, env Env) {
	if t.Owner.Kind != OwnerPlayer || t.Owner.PlayerID == p.ID {
		return
	}
	if owner := w.Player(t.Owner.PlayerID); owner != nil && owner.Role == RoleDealer {
		p.Addiction++
	}
}

var abilityIntents = []string{
	IntentUseContraband, IntentSabotage, IntentClaimCorruption,
	IntentDepositOffshore, IntentWithdrawOffshore,
}

func abilitiesStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentUseContraband:
		return useContraband(w, in)
	case IntentSabotage:
		return sabotage(w, in, env)
	case IntentClaimCorruption:
		return claimCorruption(w, in, env)
	case IntentDepositOffshore, IntentWithdrawOffshore:
		return offshore(w, in)
	}
	return w, false
}

func useContraband(w *WorldState, in Intent) (*WorldState, bool) {
	pl, rejected, done := turnActor(w, in, "Contraband")
	if done {
		return rejected, true
	}
	if pl.Contraband == 0 {
		return deny(w, "Contraband rejected: %s has none", pl.Name)
	}
	next := w.Clone()
	p := next.Current()
	p.Contraband--
	p.Addiction++
	p.Boosted++
	next.ExtraTurn = true
	next.logf(LogInfo, "%s is wired: an extra die and another roll", p.Name)
	if next.Phase == PhaseTurnEnded {
		next.settleTurnPhase()
	}
	return next, true
}

func sabotage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var tp tilePayload
	if err := decodePayload(in, &tp); err != nil {
		return deny(w, "Sabotage rejected: %v", err)
	}
	if !ready(w) {
		return deny(w, "Sabotage rejected: the game is not running")
	}
	pl := w.actor(tp.Player)
	t := w.Tile(tp.Tile)
	switch {
	case pl == nil || !pl.Alive || pl.Role != RoleSaboteur:
		return deny(w, "Sabotage rejected: only a saboteur can do that")
	case pl.cooldown(cooldownSabotage) > 0:
		return deny(w, "Sabotage rejected: %s must lie low for %d more turns", pl.Name, pl.cooldown(cooldownSabotage))
	case t == nil || t.Owner.Kind != OwnerPlayer || t.Owner.PlayerID == pl.ID || !t.Developed() || t.Broken:
		return deny(w, "Sabotage rejected: tile %d is not a developed rival tile", tp.Tile)
	}
	next := w.Clone()
	saboteurStrike(next, next.Player(pl.ID), next.Tile(tp.Tile), env)
	return next, true
}

func claimCorruption(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var pp playerPayload
	if err := decodePayload(in, &pp); err != nil {
		return deny(w, "Claim rejected: %v", err)
	}
	pl := w.actor(pp.Player)
	switch {
	case !ready(w) || pl == nil || !pl.Alive || pl.Role != RoleOfficial:
		return deny(w, "Claim rejected: only an official can empty the pot")
	case pl.cooldown(cooldownCorruption) > 0:
		return deny(w, "Claim rejected: %s is under scrutiny for %d more turns", pl.Name, pl.cooldown(cooldownCorruption))
	case w.CorruptionPot == 0:
		return deny(w, "Claim rejected: the corruption pot is empty")
	}
	next := w.Clone()
	p := next.Player(pl.ID)
	amount := next.CorruptionPot
	next.pay(potAccount, p.ID, amount)
	p.setCooldown(cooldownCorruption, env.Tuning.CorruptionCooldown)
	next.logf(LogMoney, "%s quietly collects %d from the corruption pot", p.Name, amount)
	return next, true
}

func offshore(w *WorldState, in Intent) (*WorldState, bool) {
	var ap amountPayload
	if err := decodePayload(in, &ap); err != nil {
		return deny(w, "Offshore rejected: %v", err)
	}
	pl := w.actor(ap.Player)
	if !ready(w) || pl == nil || !pl.Alive || ap.Amount <= 0 {
		return deny(w, "Offshore rejected: invalid player or amount")
	}
	deposit := in.Type == IntentDepositOffshore
	if deposit && !ConfigFor(w.Regime).OffshoreAllowed {
		return forbid(w, "Offshore deposits are banned under %s", w.Regime)
	}
	if deposit && pl.Money < ap.Amount {
		return deny(w, "Offshore rejected: %s cannot deposit %d", pl.Name, ap.Amount)
	}
	if !deposit && pl.Offshore < ap.Amount {
		return deny(w, "Offshore rejected: %s holds only %d offshore", pl.Name, pl.Offshore)
	}

	next := w.Clone()
	p := next.Player(pl.ID)
	if deposit {
		p.Money -= ap.Amount
		p.Offshore += ap.Amount
		next.logf(LogMoney, "%s moves %d offshore", p.Name, ap.Amount)
	} else {
		p.Offshore -= ap.Amount
		p.Money += ap.Amount
		next.logf(LogMoney, "%s brings %d home", p.Name, ap.Amount)
	}
	return next, true
}

var marketIntents = []string{IntentBuyShares, IntentSellShares, IntentBuyContraband}

func marketStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentBuyShares, IntentSellShares:
		return tradeShares(w, in)
	case IntentBuyContraband:
		return buyContraband(w, in, env)
	}
	return w, false
}

// tradeShares buys from or sells to the state at the listed share price
func tradeShares(w *WorldState, in Intent) (*WorldState, bool) {
	var sp sharesPayload
	if err := decodePayload(in, &sp); err != nil {
		return deny(w, "Share order rejected: %v", err)
	}
	pl := w.actor(sp.Player)
	c := w.company(sp.Company)
	if !ready(w) || pl == nil || !pl.Alive || c == nil || sp.Count <= 0 {
		return deny(w, "Share order rejected: invalid player, company or count")
	}
	cost := c.SharePrice * sp.Count
	buy := in.Type == IntentBuyShares
	switch {
	case buy && c.Holders[StateID] < sp.Count:
		return deny(w, "Share order rejected: the state holds only %d %s shares", c.Holders[StateID], c.Name)
	case buy && pl.Money < cost:
		return deny(w, "Share order rejected: %s cannot afford %d", pl.Name, cost)
	case !buy && c.Holders[pl.ID] < sp.Count:
		return deny(w, "Share order rejected: %s holds only %d %s shares", pl.Name, c.Holders[pl.ID], c.Name)
	case !buy && w.Treasury < cost:
		return deny(w, "Share order rejected: the treasury cannot pay %d", cost)
	}

	next := w.Clone()
	nc := next.company(sp.Company)
	if buy {
		next.pay(pl.ID, StateID, cost)
		nc.moveShares(StateID, pl.ID, sp.Count)
		next.logf(LogMoney, "%s bought %d %s shares for %d", pl.Name, sp.Count, nc.Name, cost)
	} else {
		next.pay(StateID, pl.ID, cost)
		nc.moveShares(pl.ID, StateID, sp.Count)
		next.logf(LogMoney, "%s sold %d %s shares for %d", pl.Name, sp.Count, nc.Name, cost)
	}
	return next, true
}

func buyContraband(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var cp contrabandPayload
	if err := decodePayload(in, &cp); err != nil {
		return deny(w, "Purchase rejected: %v", err)
	}
	if cp.Count <= 0 {
		cp.Count = 1
	}
	buyer := w.actor(cp.Player)
	dealer := w.Player(cp.Dealer)
	cost := env.Tuning.ContrabandPrice * cp.Count
	switch {
	case !ready(w) || buyer == nil || !buyer.Alive:
		return deny(w, "Purchase rejected: unknown buyer")
	case dealer == nil || !dealer.Alive || dealer.Role != RoleDealer || dealer.ID == buyer.ID:
		return deny(w, "Purchase rejected: %s is not dealing", cp.Dealer)
	case dealer.Contraband < cp.Count:
		return deny(w, "Purchase rejected: the dealer is out of stock")
	case buyer.Money < cost:
		return deny(w, "Purchase rejected: %s cannot afford %d", buyer.Name, cost)
	}
	next := w.Clone()
	b, d := next.Player(buyer.ID), next.Player(dealer.ID)
	next.pay(b.ID, d.ID, cost)
	d.Contraband -= cp.Count
	b.Contraband += cp.Count
	next.logf(LogInfo, "%s made a private purchase", b.Name)
	return next, true
}
