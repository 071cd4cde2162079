package engine

// Clone returns a deep copy of the world. Transitions clone once and mutate
// the copy, so the previous world stays valid for undo history and tests.
func (w *WorldState) Clone() *WorldState {
	if w == nil {
		return nil
	}
	c := *w

	c.Players = make([]Player, len(w.Players))
	for i, p := range w.Players {
		p.Owned = append([]int{}, p.Owned...)
		p.Cooldowns = cloneCounts(p.Cooldowns)
		p.Inventory = cloneCounts(p.Inventory)
		c.Players[i] = p
	}

	c.Tiles = make([]Tile, len(w.Tiles))
	for i, t := range w.Tiles {
		t.Rent = append([]int(nil), t.Rent...)
		c.Tiles[i] = t
	}

	c.Dice = append([]int(nil), w.Dice...)
	c.MovementOptions = append([]int(nil), w.MovementOptions...)
	if w.PendingPurchase != nil {
		id := *w.PendingPurchase
		c.PendingPurchase = &id
	}

	if w.Auction != nil {
		a := *w.Auction
		a.TileIDs = append([]int(nil), a.TileIDs...)
		a.Bidders = append([]string{}, a.Bidders...)
		if a.Instrument != nil {
			ref := *a.Instrument
			a.Instrument = &ref
		}
		c.Auction = &a
	}
	if w.Trade != nil {
		t := *w.Trade
		t.GiveTiles = append([]int(nil), t.GiveTiles...)
		t.TakeTiles = append([]int(nil), t.TakeTiles...)
		t.GiveShares = cloneCounts(t.GiveShares)
		t.TakeShares = cloneCounts(t.TakeShares)
		c.Trade = &t
	}
	if w.Election != nil {
		e := *w.Election
		e.Tally = make(map[Regime]int, len(w.Election.Tally))
		for k, v := range w.Election.Tally {
			e.Tally[k] = v
		}
		e.Voted = append([]string{}, e.Voted...)
		c.Election = &e
	}
	if w.Debt != nil {
		d := *w.Debt
		c.Debt = &d
	}
	if w.Debts != nil {
		c.Debts = append([]Debt(nil), w.Debts...)
	}
	if w.Minigame != nil {
		m := *w.Minigame
		c.Minigame = &m
	}

	if w.Companies != nil {
		c.Companies = make([]Company, len(w.Companies))
		for i, co := range w.Companies {
			co.Holders = cloneCounts(co.Holders)
			c.Companies[i] = co
		}
	}
	c.Options = append([]Option(nil), w.Options...)
	c.Log = append([]LogEntry{}, w.Log...)
	return &c
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
