package engine

import "fmt"

var auctionIntents = []string{
	IntentStartAuction, IntentListShares, IntentListOption,
	IntentPlaceBid, IntentWithdrawBid, IntentAuctionTick,
}

func auctionStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentStartAuction:
		return startAuction(w, in, env)
	case IntentListShares:
		return listShares(w, in, env)
	case IntentListOption:
		return listOption(w, in, env)
	case IntentPlaceBid:
		return placeBid(w, in, env)
	case IntentWithdrawBid:
		return withdrawBid(w, in)
	case IntentAuctionTick:
		return tickAuction(w)
	}
	return w, false
}

// openAuction installs an auction with every eligible living player as bidder
func (w *WorldState) openAuction(a *Auction, env Env) {
	a.ID = w.newID("auction")
	a.TicksLeft = env.Tuning.AuctionTicks
	a.Bidders = nil
	for _, p := range w.Players {
		if p.Alive && p.ID != a.Lister {
			a.Bidders = append(a.Bidders, p.ID)
		}
	}
	w.Auction = a
	mode := "open"
	if a.Sealed {
		mode = "sealed"
	}
	w.logf(LogAuction, "Auction %s opened (%s, %s) for %s", a.ID, a.Kind, mode, w.auctionSubject(a))
}

func (w *WorldState) auctionSubject(a *Auction) string {
	switch a.Kind {
	case AuctionTile:
		return w.Tiles[a.TileIDs[0]].Name
	case AuctionBundle:
		return fmt.Sprintf("a bundle of %d tiles", len(a.TileIDs))
	}
	if a.Instrument != nil && a.Instrument.Kind == InstrumentShares {
		return fmt.Sprintf("%d %s shares", a.Instrument.Count, a.Instrument.CompanyID)
	}
	if a.Instrument != nil {
		return "option " + a.Instrument.OptionID
	}
	return "an instrument"
}

func startAuction(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var ap auctionPayload
	if err := decodePayload(in, &ap); err != nil {
		return deny(w, "Auction rejected: %v", err)
	}
	if !ready(w) {
		return deny(w, "Auction rejected: the game is not running")
	}
	if w.Auction != nil {
		return deny(w, "Auction rejected: auction %s is still open", w.Auction.ID)
	}
	t := w.Tile(ap.Tile)
	if t == nil || !t.Type.Purchasable() {
		return deny(w, "Auction rejected: tile %d cannot be auctioned", ap.Tile)
	}
	pending := w.PendingPurchase != nil && *w.PendingPurchase == t.ID
	if !pending && t.Owner.Kind != OwnerState {
		return deny(w, "Auction rejected: %s is neither on offer nor state-owned", t.Name)
	}
	next := w.Clone()
	if pending {
		next.PendingPurchase = nil
	}
	next.openAuction(&Auction{Kind: AuctionTile, TileIDs: []int{t.ID}, Sealed: ap.Sealed}, env)
	next.settleTurnPhase()
	return next, true
}

func listShares(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var sp sharesPayload
	if err := decodePayload(in, &sp); err != nil {
		return deny(w, "Listing rejected: %v", err)
	}
	pl := w.actor(sp.Player)
	c := w.company(sp.Company)
	switch {
	case !ready(w) || pl == nil || !pl.Alive:
		return deny(w, "Listing rejected: unknown player")
	case w.Auction != nil:
		return deny(w, "Listing rejected: auction %s is still open", w.Auction.ID)
	case c == nil || sp.Count <= 0 || c.Holders[pl.ID] < sp.Count:
		return deny(w, "Listing rejected: %s does not hold %d %s shares", pl.Name, sp.Count, sp.Company)
	}
	next := w.Clone()
	nc := next.company(c.ID)
	nc.Holders[pl.ID] -= sp.Count
	if nc.Holders[pl.ID] == 0 {
		delete(nc.Holders, pl.ID)
	}
	nc.EscrowShares += sp.Count
	next.openAuction(&Auction{
		Kind:       AuctionInstrument,
		Instrument: &InstrumentRef{Kind: InstrumentShares, CompanyID: c.ID, Count: sp.Count},
		Lister:     pl.ID,
		Sealed:     sp.Sealed,
	}, env)
	return next, true
}

func listOption(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var op optionPayload
	if err := decodePayload(in, &op); err != nil {
		return deny(w, "Listing rejected: %v", err)
	}
	pl := w.actor(op.Player)
	o := w.option(op.Option)
	switch {
	case !ready(w) || pl == nil || !pl.Alive:
		return deny(w, "Listing rejected: unknown player")
	case w.Auction != nil:
		return deny(w, "Listing rejected: auction %s is still open", w.Auction.ID)
	case o == nil || o.Holder != pl.ID || o.TurnsLeft <= 0:
		return deny(w, "Listing rejected: %s holds no live option %s", pl.Name, op.Option)
	}
	next := w.Clone()
	next.openAuction(&Auction{
		Kind:       AuctionInstrument,
		Instrument: &InstrumentRef{Kind: InstrumentOption, OptionID: o.ID},
		Lister:     pl.ID,
		Sealed:     op.Sealed,
	}, env)
	return next, true
}

func placeBid(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var ap amountPayload
	if err := decodePayload(in, &ap); err != nil {
		return deny(w, "Bid rejected: %v", err)
	}
	a := w.Auction
	if a == nil {
		return deny(w, "Bid rejected: no auction is open")
	}
	pl := w.actor(ap.Player)
	switch {
	case pl == nil || !pl.Alive || !containsString(a.Bidders, pl.ID):
		return deny(w, "Bid rejected: %s is not an eligible bidder", ap.Player)
	case ap.Amount <= a.HighBid:
		return deny(w, "Bid rejected: %d does not beat the current bid", ap.Amount)
	case pl.Money < ap.Amount:
		return deny(w, "Bid rejected: %s cannot cover %d", pl.Name, ap.Amount)
	}
	next := w.Clone()
	na := next.Auction
	na.HighBid = ap.Amount
	na.HighBidder = pl.ID
	na.TicksLeft = env.Tuning.BidRefreshTicks
	if na.Sealed {
		next.logf(LogAuction, "A sealed bid was placed in auction %s", na.ID)
	} else {
		next.logf(LogAuction, "%s bids %d", pl.Name, ap.Amount)
	}
	return next, true
}

// withdrawBid drops a bidder. A withdrawing high bidder's bid still stands.
func withdrawBid(w *WorldState, in Intent) (*WorldState, bool) {
	var pp playerPayload
	if err := decodePayload(in, &pp); err != nil {
		return deny(w, "Withdraw rejected: %v", err)
	}
	a := w.Auction
	if a == nil {
		return deny(w, "Withdraw rejected: no auction is open")
	}
	pl := w.actor(pp.Player)
	if pl == nil || !containsString(a.Bidders, pl.ID) {
		return deny(w, "Withdraw rejected: %s is not bidding", pp.Player)
	}
	next := w.Clone()
	next.Auction.Bidders = removeString(next.Auction.Bidders, pl.ID)
	next.logf(LogAuction, "%s withdrew from auction %s", pl.Name, a.ID)
	if len(next.Auction.Bidders) == 0 {
		next.resolveAuction()
	}
	return next, true
}

func tickAuction(w *WorldState) (*WorldState, bool) {
	if w.Auction == nil {
		return w, true
	}
	next := w.Clone()
	next.Auction.TicksLeft--
	if next.Auction.TicksLeft <= 0 {
		next.resolveAuction()
	}
	return next, true
}

// resolveAuction closes the open auction. A winner who can no longer cover the
// bid cancels the auction; no winner hands the asset to the state.
func (w *WorldState) resolveAuction() {
	a := w.Auction
	if a == nil {
		return
	}
	w.Auction = nil

	if a.Kind == AuctionInstrument && !w.instrumentAvailable(a) {
		w.cancelAuction(a)
		w.logf(LogAuction, "Auction %s cancelled: the listed instrument no longer exists", a.ID)
		w.settleTurnPhase()
		return
	}
	if a.HighBidder == "" || a.HighBidder == StateID {
		w.stateWinsAuction(a)
		w.settleTurnPhase()
		return
	}
	winner := w.Player(a.HighBidder)
	if winner == nil || !winner.Alive || winner.Money < a.HighBid {
		w.cancelAuction(a)
		w.logf(LogAuction, "Auction %s cancelled: %s can no longer cover %d", a.ID, w.nameOf(a.HighBidder), a.HighBid)
		w.settleTurnPhase()
		return
	}

	switch a.Kind {
	case AuctionTile, AuctionBundle:
		w.pay(winner.ID, StateID, a.HighBid)
		for _, id := range a.TileIDs {
			w.setOwner(id, playerOwner(winner.ID))
		}
	case AuctionInstrument:
		seller := a.Lister
		if p := w.Player(seller); p == nil || !p.Alive {
			seller = StateID
		}
		w.pay(winner.ID, seller, a.HighBid)
		w.transferInstrument(a.Instrument, a.Lister, winner.ID)
	}
	w.logf(LogAuction, "%s won auction %s for %d", winner.Name, a.ID, a.HighBid)
	w.settleTurnPhase()
}

// stateWinsAuction resets the asset to the state and hands the winning bid to the citizens
func (w *WorldState) stateWinsAuction(a *Auction) {
	switch a.Kind {
	case AuctionTile, AuctionBundle:
		for _, id := range a.TileIDs {
			w.setOwner(id, stateOwner)
		}
	case AuctionInstrument:
		w.returnInstrument(a)
	}
	share := w.redistribute(a.HighBid)
	w.logf(LogAuction, "Auction %s closed without a buyer; the state keeps it", a.ID)
	if share > 0 {
		w.logf(LogMoney, "The state pays %d to each living player", share)
	}
}

// cancelAuction undoes the listing without any transfer
func (w *WorldState) cancelAuction(a *Auction) {
	switch a.Kind {
	case AuctionBundle:
		for _, id := range a.TileIDs {
			if w.Tiles[id].Owner.Kind == OwnerEscrow {
				w.setOwner(id, stateOwner)
			}
		}
	case AuctionInstrument:
		w.returnInstrument(a)
	}
}

// optionListed reports whether an option is the lot of the open auction
func (w *WorldState) optionListed(id string) bool {
	a := w.Auction
	return a != nil && a.Instrument != nil && a.Instrument.Kind == InstrumentOption && a.Instrument.OptionID == id
}

// instrumentAvailable reports whether the lister can still hand over the lot.
// Listed shares sit in escrow; a listed option stays in the lister's hands
// and may have been voided since.
func (w *WorldState) instrumentAvailable(a *Auction) bool {
	if a.Instrument == nil || a.Instrument.Kind != InstrumentOption {
		return true
	}
	o := w.option(a.Instrument.OptionID)
	return o != nil && o.Holder == a.Lister
}

func (w *WorldState) returnInstrument(a *Auction) {
	if a.Instrument == nil || a.Instrument.Kind != InstrumentShares {
		return
	}
	c := w.company(a.Instrument.CompanyID)
	if c == nil {
		return
	}
	c.EscrowShares -= a.Instrument.Count
	if c.Holders == nil {
		c.Holders = map[string]int{}
	}
	holder := a.Lister
	if p := w.Player(holder); p == nil || !p.Alive {
		holder = StateID
	}
	c.Holders[holder] += a.Instrument.Count
}

func (w *WorldState) transferInstrument(ref *InstrumentRef, from, to string) {
	if ref == nil {
		return
	}
	switch ref.Kind {
	case InstrumentShares:
		if c := w.company(ref.CompanyID); c != nil {
			c.EscrowShares -= ref.Count
			if c.Holders == nil {
				c.Holders = map[string]int{}
			}
			c.Holders[to] += ref.Count
		}
	case InstrumentOption:
		if o := w.option(ref.OptionID); o != nil && o.Holder == from {
			o.Holder = to
		}
	}
}
