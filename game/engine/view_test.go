package engine

import (
	"strings"
	"testing"
)

func TestViewFor(t *testing.T) {
	w := newTestWorld(t)
	w.Players[0].Role = RoleOfficial
	w.Players[1].Role = RoleDealer
	w.Players[1].Contraband = 3
	w.Auction = &Auction{ID: "auction-1", Kind: AuctionTile, TileIDs: []int{1}, Bidders: []string{"ana", "ben"},
		HighBid: 120, HighBidder: "ben", TicksLeft: 5, Sealed: true}

	t.Run("other roles are hidden", func(t *testing.T) {
		v := ViewFor(w, "ana")
		if v.Player("ana").Role != RoleOfficial {
			t.Errorf("Expected ana to see their own role, got %s", v.Player("ana").Role)
		}
		if v.Player("ben").Role != RoleHidden || v.Player("ben").Contraband != 0 {
			t.Errorf("Expected ben's role and stash hidden, got %s and %d", v.Player("ben").Role, v.Player("ben").Contraband)
		}
	})

	t.Run("sealed bid is hidden from others", func(t *testing.T) {
		if v := ViewFor(w, "ana"); v.Auction.HighBid != 0 || v.Auction.HighBidder != "" {
			t.Errorf("Expected the sealed bid hidden, got %d by %q", v.Auction.HighBid, v.Auction.HighBidder)
		}
		if v := ViewFor(w, "ben"); v.Auction.HighBid != 120 {
			t.Errorf("Expected the high bidder to see the bid, got %d", v.Auction.HighBid)
		}
	})

	t.Run("squats are hidden from others", func(t *testing.T) {
		squat := w.Clone()
		squat.Tiles[5].OccupiedBy = "ben"
		if v := ViewFor(squat, "ana"); v.Tiles[5].OccupiedBy != string(RoleHidden) {
			t.Errorf("Expected the squatter hidden, got %q", v.Tiles[5].OccupiedBy)
		}
		if v := ViewFor(squat, "ben"); v.Tiles[5].OccupiedBy != "ben" {
			t.Errorf("Expected ben to see their own squat, got %q", v.Tiles[5].OccupiedBy)
		}
	})

	t.Run("source world untouched", func(t *testing.T) {
		ViewFor(w, "")
		if w.Players[1].Role != RoleDealer || w.Auction.HighBid != 120 {
			t.Error("Expected the view to work on a copy")
		}
	})

	t.Run("revealed after game over", func(t *testing.T) {
		over := w.Clone()
		over.Phase = PhaseGameOver
		if v := ViewFor(over, "ana"); v.Player("ben").Role != RoleDealer {
			t.Errorf("Expected roles revealed at the end, got %s", v.Player("ben").Role)
		}
	})
}

func TestViewFor_SealedBidLogIsAnonymous(t *testing.T) {
	w := newTestWorld(t, "ana", "ben", "cal")
	w.Auction = &Auction{ID: "auction-1", Kind: AuctionTile, TileIDs: []int{1}, Bidders: []string{"ana", "ben", "cal"},
		TicksLeft: 5, Sealed: true}
	before := len(w.Log)
	env := testEnv(nil)
	w = apply(t, w, env, IntentPlaceBid, map[string]any{"player": "ben", "amount": 40})
	w = apply(t, w, env, IntentPlaceBid, map[string]any{"player": "cal", "amount": 70})

	v := ViewFor(w, "ana")
	if v.Auction.HighBid != 0 || v.Auction.HighBidder != "" {
		t.Fatalf("Expected the sealed bid hidden, got %d by %q", v.Auction.HighBid, v.Auction.HighBidder)
	}
	fresh := v.Log[:len(v.Log)-before]
	if len(fresh) != 2 {
		t.Fatalf("Expected two bid lines, got %d", len(fresh))
	}
	for _, e := range fresh {
		for _, name := range []string{w.Player("ben").Name, w.Player("cal").Name} {
			if strings.Contains(e.Message, name) {
				t.Errorf("Expected no bidder named in %q", e.Message)
			}
		}
		if strings.Contains(e.Message, "40") || strings.Contains(e.Message, "70") {
			t.Errorf("Expected no amount in %q", e.Message)
		}
	}
}
