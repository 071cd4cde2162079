package engine

import "sort"

var financeIntents = []string{IntentPayDebt, IntentDeclareBankruptcy}

func financeStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentPayDebt:
		return payDebt(w, in)
	case IntentDeclareBankruptcy:
		return declareBankruptcy(w, in, env)
	}
	return w, false
}

func payDebt(w *WorldState, in Intent) (*WorldState, bool) {
	var pp playerPayload
	if err := decodePayload(in, &pp); err != nil {
		return deny(w, "Payment rejected: %v", err)
	}
	pl := w.actor(pp.Player)
	if w.Debt == nil || pl == nil || w.Debt.Debtor != pl.ID {
		return deny(w, "Payment rejected: %s has no pending debt", pp.Player)
	}
	if pl.Money < w.Debt.Amount {
		return deny(w, "Payment rejected: %s has %d of the %d owed; mortgage or sell first", pl.Name, pl.Money, w.Debt.Amount)
	}
	next := w.Clone()
	next.afterLiquidity()
	return next, true
}

// declareBankruptcy eliminates the debtor. A player creditor receives everything;
// the state takes the cash and puts the tiles up as an escrowed bundle.
func declareBankruptcy(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var pp playerPayload
	if err := decodePayload(in, &pp); err != nil {
		return deny(w, "Bankruptcy rejected: %v", err)
	}
	pl := w.actor(pp.Player)
	if pl == nil || !pl.Alive {
		return deny(w, "Bankruptcy rejected: unknown player %s", pp.Player)
	}
	if w.Debt == nil || w.Debt.Debtor != pl.ID {
		return deny(w, "Bankruptcy rejected: %s has no pending debt", pl.Name)
	}

	next := w.Clone()
	debt := *next.Debt
	next.Debt = nil
	next.dropDebtsOf(pl.ID)
	p := next.Player(pl.ID)
	creditor := debt.Creditor
	if c := next.Player(creditor); c == nil || !c.Alive {
		creditor = StateID
	}

	// offshore money comes home to be seized with the rest
	p.Money += p.Offshore
	p.Offshore = 0
	cash := p.Money
	next.pay(p.ID, creditor, cash)

	tiles := append([]int(nil), p.Owned...)
	sort.Ints(tiles)
	if creditor == StateID {
		for _, id := range tiles {
			next.clearBuildings(&next.Tiles[id])
			next.voidOptionsOn(id)
			next.setOwner(id, Owner{Kind: OwnerEscrow})
		}
	} else {
		for _, id := range tiles {
			next.voidOptionsOn(id)
			next.setOwner(id, playerOwner(creditor))
		}
	}
	for i := range next.Companies {
		c := &next.Companies[i]
		if held := c.Holders[p.ID]; held > 0 {
			c.moveShares(p.ID, creditor, held)
		}
	}
	for _, o := range append([]Option(nil), next.Options...) {
		if o.Holder == p.ID || o.Writer == p.ID {
			next.removeOption(o.ID)
		}
	}

	p.Alive = false
	p.Owned = []int{}
	p.Contraband = 0
	p.JailTurns = 0
	p.SkipTurns = 0
	next.logf(LogDebt, "%s is bankrupt; %s receives %d in cash and %d tiles", p.Name, next.nameOf(creditor), cash, len(tiles))

	if next.Auction != nil {
		next.Auction.Bidders = removeString(next.Auction.Bidders, p.ID)
		if next.Auction.HighBidder == p.ID || len(next.Auction.Bidders) == 0 || !next.instrumentAvailable(next.Auction) {
			next.resolveAuction()
		}
	}
	if next.Trade != nil && (next.Trade.From == p.ID || next.Trade.To == p.ID) {
		next.logf(LogTrade, "Trade %s voided by bankruptcy", next.Trade.ID)
		next.Trade = nil
	}
	if next.Minigame != nil && next.Minigame.PlayerID == p.ID {
		next.pay(escrowAccount, StateID, next.Minigame.Wager)
		next.Minigame = nil
	}

	if creditor == StateID && len(tiles) > 0 {
		if next.Auction == nil {
			next.openAuction(&Auction{Kind: AuctionBundle, TileIDs: tiles}, env)
		} else {
			for _, id := range tiles {
				next.setOwner(id, stateOwner)
			}
		}
	}

	next.promoteDebt()
	if next.checkGameOver() {
		return next, true
	}
	if next.isCurrent(p) {
		next.PendingPurchase = nil
		next.MovementOptions = nil
		next.PendingMoves = 0
		next.HasRolled = true
		next.RolledDoubles = false
		next.ExtraTurn = false
		next.Phase = PhaseTurnEnded
	}
	return next, true
}
