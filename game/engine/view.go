package engine

// ViewFor returns the world as seen by one player. Other players' roles and
// squats are hidden until the game ends, and a sealed auction shows its high
// bid only to the high bidder. An empty viewer gets the public view.
func ViewFor(w *WorldState, viewer string) *WorldState {
	if w == nil {
		return nil
	}
	v := w.Clone()
	if v.Phase != PhaseGameOver {
		for i := range v.Players {
			if v.Players[i].ID != viewer {
				v.Players[i].Role = RoleHidden
				v.Players[i].Contraband = 0
				v.Players[i].Addiction = 0
			}
		}
		for i := range v.Tiles {
			if occ := v.Tiles[i].OccupiedBy; occ != "" && occ != viewer {
				v.Tiles[i].OccupiedBy = string(RoleHidden)
			}
		}
	}
	if v.Auction != nil && v.Auction.Sealed && v.Auction.HighBidder != viewer {
		v.Auction.HighBid = 0
		v.Auction.HighBidder = ""
	}
	return v
}
