package engine

import (
	"fmt"
	"sort"
)

var tradeIntents = []string{IntentProposeTrade, IntentAcceptTrade, IntentRejectTrade, IntentCloseTrade}

func tradeStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentProposeTrade:
		return proposeTrade(w, in)
	case IntentAcceptTrade:
		return acceptTrade(w, in)
	case IntentRejectTrade, IntentCloseTrade:
		return dropTrade(w, in)
	}
	return w, false
}

func proposeTrade(w *WorldState, in Intent) (*WorldState, bool) {
	var tp tradePayload
	if err := decodePayload(in, &tp); err != nil {
		return deny(w, "Trade rejected: %v", err)
	}
	if !ready(w) {
		return deny(w, "Trade rejected: the game is not running")
	}
	if !ConfigFor(w.Regime).CanTrade {
		return forbid(w, "Private trade is banned under %s", w.Regime)
	}
	if w.Trade != nil {
		return deny(w, "Trade rejected: trade %s is still pending", w.Trade.ID)
	}
	from, to := w.actor(tp.Player), w.Player(tp.To)
	if from == nil || to == nil || !from.Alive || !to.Alive || from.ID == to.ID {
		return deny(w, "Trade rejected: a trade needs two different living players")
	}

	proposal := TradeProposal{
		From:       from.ID,
		To:         to.ID,
		GiveMoney:  tp.GiveMoney,
		TakeMoney:  tp.TakeMoney,
		GiveTiles:  append([]int(nil), tp.GiveTiles...),
		TakeTiles:  append([]int(nil), tp.TakeTiles...),
		GiveShares: cloneCounts(tp.GiveShares),
		TakeShares: cloneCounts(tp.TakeShares),
	}
	if err := w.validateTrade(&proposal); err != nil {
		return deny(w, "Trade rejected: %v", err)
	}

	next := w.Clone()
	proposal.ID = next.newID("trade")
	next.Trade = &proposal
	next.logf(LogTrade, "%s proposed trade %s to %s", from.Name, proposal.ID, to.Name)
	return next, true
}

// validateTrade checks every leg of a trade against the current world
func (w *WorldState) validateTrade(t *TradeProposal) error {
	from, to := w.Player(t.From), w.Player(t.To)
	if from == nil || to == nil || !from.Alive || !to.Alive {
		return fmt.Errorf("both parties must be alive")
	}
	if t.GiveMoney < 0 || t.TakeMoney < 0 {
		return fmt.Errorf("money legs must not be negative")
	}
	if from.Money < t.GiveMoney {
		return fmt.Errorf("%s cannot give %d", from.Name, t.GiveMoney)
	}
	if to.Money < t.TakeMoney {
		return fmt.Errorf("%s cannot give %d", to.Name, t.TakeMoney)
	}
	if len(t.GiveTiles) == 0 && len(t.TakeTiles) == 0 && t.GiveMoney == 0 && t.TakeMoney == 0 &&
		len(t.GiveShares) == 0 && len(t.TakeShares) == 0 {
		return fmt.Errorf("the trade is empty")
	}
	if err := w.checkTradeTiles(from, t.GiveTiles); err != nil {
		return err
	}
	if err := w.checkTradeTiles(to, t.TakeTiles); err != nil {
		return err
	}
	if err := w.checkTradeShares(from, t.GiveShares); err != nil {
		return err
	}
	return w.checkTradeShares(to, t.TakeShares)
}

func (w *WorldState) checkTradeTiles(owner *Player, ids []int) error {
	seen := map[int]bool{}
	for _, id := range ids {
		t := w.Tile(id)
		switch {
		case t == nil || seen[id]:
			return fmt.Errorf("tile %d is listed twice or does not exist", id)
		case !t.Owner.IsPlayer(owner.ID):
			return fmt.Errorf("%s does not own %s", owner.Name, t.Name)
		case t.Developed():
			return fmt.Errorf("%s carries buildings", t.Name)
		case w.optionOn(id) != nil:
			return fmt.Errorf("%s is encumbered by an option", t.Name)
		case w.Auction != nil && containsInt(w.Auction.TileIDs, id):
			return fmt.Errorf("%s is under auction", t.Name)
		}
		seen[id] = true
	}
	return nil
}

func (w *WorldState) checkTradeShares(owner *Player, shares map[string]int) error {
	for id, count := range shares {
		c := w.company(id)
		if c == nil || count <= 0 {
			return fmt.Errorf("invalid share leg %s:%d", id, count)
		}
		if c.Holders[owner.ID] < count {
			return fmt.Errorf("%s holds only %d %s shares", owner.Name, c.Holders[owner.ID], c.Name)
		}
	}
	return nil
}

// acceptTrade applies all legs in one transition after validating all of them
func acceptTrade(w *WorldState, in Intent) (*WorldState, bool) {
	var pp playerPayload
	if err := decodePayload(in, &pp); err != nil {
		return deny(w, "Accept rejected: %v", err)
	}
	if w.Trade == nil {
		return deny(w, "Accept rejected: no trade is pending")
	}
	if !ConfigFor(w.Regime).CanTrade {
		return forbid(w, "Private trade is banned under %s", w.Regime)
	}
	pl := w.actor(pp.Player)
	if pl == nil || pl.ID != w.Trade.To {
		return deny(w, "Accept rejected: only %s can accept trade %s", w.nameOf(w.Trade.To), w.Trade.ID)
	}
	if err := w.validateTrade(w.Trade); err != nil {
		return deny(w, "Accept rejected: %v", err)
	}

	next := w.Clone()
	t := next.Trade
	next.Trade = nil

	next.pay(t.From, t.To, t.GiveMoney)
	next.pay(t.To, t.From, t.TakeMoney)
	for _, id := range t.GiveTiles {
		next.setOwner(id, playerOwner(t.To))
	}
	for _, id := range t.TakeTiles {
		next.setOwner(id, playerOwner(t.From))
	}
	for _, id := range sortedKeys(t.GiveShares) {
		next.company(id).moveShares(t.From, t.To, t.GiveShares[id])
	}
	for _, id := range sortedKeys(t.TakeShares) {
		next.company(id).moveShares(t.To, t.From, t.TakeShares[id])
	}
	next.logf(LogTrade, "%s accepted trade %s", pl.Name, t.ID)
	next.afterLiquidity()
	return next, true
}

// dropTrade discards the pending trade: the target rejects, the initiator closes
func dropTrade(w *WorldState, in Intent) (*WorldState, bool) {
	var pp playerPayload
	if err := decodePayload(in, &pp); err != nil {
		return deny(w, "Trade response rejected: %v", err)
	}
	if w.Trade == nil {
		return w, true
	}
	pl := w.actor(pp.Player)
	want := w.Trade.To
	verb := "rejected"
	if in.Type == IntentCloseTrade {
		want = w.Trade.From
		verb = "withdrew"
	}
	if pl == nil || pl.ID != want {
		return deny(w, "Trade response rejected: only %s can do that", w.nameOf(want))
	}
	next := w.Clone()
	next.logf(LogTrade, "%s %s trade %s", pl.Name, verb, next.Trade.ID)
	next.Trade = nil
	return next, true
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
