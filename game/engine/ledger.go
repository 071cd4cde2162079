package engine

// setOwner reassigns a tile, keeping every player's owned set consistent
func (w *WorldState) setOwner(tileID int, owner Owner) {
	t := w.Tile(tileID)
	if t == nil {
		return
	}
	if t.Owner.Kind == OwnerPlayer {
		if prev := w.Player(t.Owner.PlayerID); prev != nil {
			prev.Owned = removeInt(prev.Owned, tileID)
		}
	}
	if owner.Kind != OwnerPlayer {
		owner.PlayerID = ""
	}
	t.Owner = owner
	if owner.Kind == OwnerPlayer {
		if next := w.Player(owner.PlayerID); next != nil {
			next.Owned = insertSorted(next.Owned, tileID)
		}
	}
}

func playerOwner(id string) Owner { return Owner{Kind: OwnerPlayer, PlayerID: id} }

var stateOwner = Owner{Kind: OwnerState}

// ownerAccount returns the account that collects rent for a tile
func ownerAccount(o Owner) string {
	switch o.Kind {
	case OwnerPlayer:
		return o.PlayerID
	case OwnerState:
		return StateID
	}
	return ""
}

// sameOwner reports whether two owner references name the same holder
func sameOwner(a, b Owner) bool {
	return a.Kind == b.Kind && a.PlayerID == b.PlayerID
}

// countOwned returns how many tiles of a type the owner holds
func (w *WorldState) countOwned(o Owner, tt TileType) int {
	n := 0
	for i := range w.Tiles {
		if w.Tiles[i].Type == tt && sameOwner(w.Tiles[i].Owner, o) {
			n++
		}
	}
	return n
}

// groupTiles returns the positions of every property in a color group
func (w *WorldState) groupTiles(group string) []int {
	var ids []int
	for i := range w.Tiles {
		if w.Tiles[i].Type == TileProperty && w.Tiles[i].Group == group {
			ids = append(ids, i)
		}
	}
	return ids
}

// ownsFullGroup reports whether one owner holds every tile of a color group
func (w *WorldState) ownsFullGroup(o Owner, group string) bool {
	ids := w.groupTiles(group)
	if len(ids) == 0 || o.Kind == OwnerNone {
		return false
	}
	for _, id := range ids {
		if !sameOwner(w.Tiles[id].Owner, o) {
			return false
		}
	}
	return true
}

// groupDeveloped reports whether any tile in the group carries buildings
func (w *WorldState) groupDeveloped(group string) bool {
	for _, id := range w.groupTiles(group) {
		if w.Tiles[id].Developed() {
			return true
		}
	}
	return false
}

// fullGroups returns the color groups entirely owned by one player, in board order
func (w *WorldState) fullGroups() map[string]string {
	out := map[string]string{}
	for i := range w.Tiles {
		t := &w.Tiles[i]
		if t.Type != TileProperty || t.Owner.Kind != OwnerPlayer {
			continue
		}
		if _, seen := out[t.Group]; seen {
			continue
		}
		if w.ownsFullGroup(t.Owner, t.Group) {
			out[t.Group] = t.Owner.PlayerID
		}
	}
	return out
}

// groupOrder returns color groups in the order they first appear on the board
func (w *WorldState) groupOrder() []string {
	var groups []string
	seen := map[string]bool{}
	for i := range w.Tiles {
		g := w.Tiles[i].Group
		if w.Tiles[i].Type == TileProperty && !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}
	return groups
}

// clearBuildings returns every building on a tile to the bank
func (w *WorldState) clearBuildings(t *Tile) {
	if t.Hotel {
		w.Bank.Hotels++
		t.Hotel = false
	}
	w.Bank.Houses += t.Houses
	t.Houses = 0
}

// resetTile clears per-owner tile state when the tile changes hands outside a sale
func (w *WorldState) resetTile(t *Tile) {
	w.clearBuildings(t)
	t.Mortgaged = false
	t.MortgagePrincipal = 0
	t.Broken = false
	t.BlockedRentTurns = 0
}

// optionOn returns the live option written on a tile, or nil
func (w *WorldState) optionOn(tileID int) *Option {
	for i := range w.Options {
		if w.Options[i].TileID == tileID {
			return &w.Options[i]
		}
	}
	return nil
}

func (w *WorldState) option(id string) *Option {
	for i := range w.Options {
		if w.Options[i].ID == id {
			return &w.Options[i]
		}
	}
	return nil
}

func (w *WorldState) removeOption(id string) {
	out := w.Options[:0]
	for _, o := range w.Options {
		if o.ID != id {
			out = append(out, o)
		}
	}
	w.Options = out
}

// voidOptionsOn cancels options on a tile that left its writer's hands
func (w *WorldState) voidOptionsOn(tileID int) {
	for _, o := range append([]Option(nil), w.Options...) {
		if o.TileID == tileID {
			w.removeOption(o.ID)
			w.logf(LogInfo, "Option %s on %s voided", o.ID, w.Tiles[tileID].Name)
		}
	}
}

func (w *WorldState) company(id string) *Company {
	for i := range w.Companies {
		if w.Companies[i].ID == id {
			return &w.Companies[i]
		}
	}
	return nil
}

// moveShares shifts a holding between holders; it fails when from holds too few
func (c *Company) moveShares(from, to string, count int) bool {
	if count <= 0 || c.Holders[from] < count {
		return false
	}
	if c.Holders == nil {
		c.Holders = map[string]int{}
	}
	c.Holders[from] -= count
	if c.Holders[from] == 0 {
		delete(c.Holders, from)
	}
	c.Holders[to] += count
	return true
}
