package engine

import "testing"

// landedOn places ana on a tile with the offer pending, as after a move
func landedOn(t *testing.T, w *WorldState, tile int) *WorldState {
	t.Helper()
	w.Players[0].Position = tile
	w.PendingPurchase = &tile
	w.HasRolled = true
	w.Phase = PhaseLandedDecision
	return w
}

func TestBuyProperty_Rejections(t *testing.T) {
	t.Run("nothing on offer", func(t *testing.T) {
		w := apply(t, newTestWorld(t), testEnv(nil), IntentBuyProperty, nil)
		if lastLog(w).Kind != LogDenied {
			t.Error("Expected the purchase to be denied")
		}
	})

	t.Run("cannot afford", func(t *testing.T) {
		w := landedOn(t, newTestWorld(t), 39)
		w.Players[0].Money = 100
		rebalance(w)
		w = apply(t, w, testEnv(nil), IntentBuyProperty, nil)
		if lastLog(w).Kind != LogDenied || w.Tiles[39].Owner.Kind != OwnerNone {
			t.Error("Expected the purchase to be denied")
		}
	})
}

func TestDeclineProperty(t *testing.T) {
	t.Run("opens an auction", func(t *testing.T) {
		w := apply(t, landedOn(t, newTestWorld(t), 1), testEnv(nil), IntentDeclineProperty, nil)
		if w.Auction == nil || w.Auction.Kind != AuctionTile || w.Auction.TileIDs[0] != 1 {
			t.Fatalf("Expected a tile auction for Mill Lane, got %+v", w.Auction)
		}
		if !equalStrings(w.Auction.Bidders, []string{"ana", "ben"}) || w.Auction.TicksLeft != 30 {
			t.Errorf("Expected both players bidding for 30 ticks, got %v and %d", w.Auction.Bidders, w.Auction.TicksLeft)
		}
		if w.PendingPurchase != nil || w.Phase != PhaseTurnEnded {
			t.Errorf("Expected the offer to be cleared, got %v in %s", w.PendingPurchase, w.Phase)
		}
	})

	t.Run("goes to the state under socialism", func(t *testing.T) {
		w := landedOn(t, newTestWorld(t), 1)
		w.Regime = Socialism
		w = apply(t, w, testEnv(nil), IntentDeclineProperty, nil)
		if w.Tiles[1].Owner.Kind != OwnerState || w.Auction != nil {
			t.Fatalf("Expected the state to take Mill Lane, got %+v", w.Tiles[1].Owner)
		}
		// half the price, split across two players
		if w.Player("ana").Money != 1515 || w.Player("ben").Money != 1515 || w.Treasury != 19970 {
			t.Errorf("Expected 15 each, got ana %d ben %d treasury %d", w.Player("ana").Money, w.Player("ben").Money, w.Treasury)
		}
	})
}

func ownBrown(w *WorldState, id string) {
	w.setOwner(1, playerOwner(id))
	w.setOwner(3, playerOwner(id))
}

func TestBuildHouse(t *testing.T) {
	t.Run("full group", func(t *testing.T) {
		w := newTestWorld(t)
		ownBrown(w, "ana")
		w = apply(t, w, testEnv(nil), IntentBuildHouse, map[string]any{"player": "ana", "tile": 1})
		if w.Tiles[1].Houses != 1 || w.Bank.Houses != 31 {
			t.Errorf("Expected 1 house from the bank, got %d with %d left", w.Tiles[1].Houses, w.Bank.Houses)
		}
		if w.Player("ana").Money != 1450 || w.Treasury != 20050 {
			t.Errorf("Expected a 50 build cost, got money %d treasury %d", w.Player("ana").Money, w.Treasury)
		}
	})

	t.Run("incomplete group", func(t *testing.T) {
		w := newTestWorld(t)
		w.setOwner(1, playerOwner("ana"))
		w.setOwner(3, playerOwner("ben"))
		w = apply(t, w, testEnv(nil), IntentBuildHouse, map[string]any{"player": "ana", "tile": 1})
		if lastLog(w).Kind != LogDenied || w.Tiles[1].Houses != 0 {
			t.Error("Expected building without the full group to be denied")
		}
	})

	t.Run("mortgaged group", func(t *testing.T) {
		w := newTestWorld(t)
		ownBrown(w, "ana")
		w.Tiles[3].Mortgaged = true
		w = apply(t, w, testEnv(nil), IntentBuildHouse, map[string]any{"player": "ana", "tile": 1})
		if lastLog(w).Kind != LogDenied {
			t.Error("Expected building on a mortgaged group to be denied")
		}
	})

	t.Run("hotel replaces four houses", func(t *testing.T) {
		w := newTestWorld(t)
		ownBrown(w, "ana")
		w.Tiles[1].Houses = 4
		w.Bank.Houses = 28
		w = apply(t, w, testEnv(nil), IntentBuildHouse, map[string]any{"player": "ana", "tile": 1})
		if !w.Tiles[1].Hotel || w.Tiles[1].Houses != 0 {
			t.Fatalf("Expected a hotel, got %d houses hotel=%v", w.Tiles[1].Houses, w.Tiles[1].Hotel)
		}
		if w.Bank.Houses != 32 || w.Bank.Hotels != 11 {
			t.Errorf("Expected houses back in the bank, got %+v", w.Bank)
		}
	})

	t.Run("shortage blocked under democracy", func(t *testing.T) {
		w := newTestWorld(t)
		ownBrown(w, "ana")
		w.Bank.Houses = 0
		w = apply(t, w, testEnv(nil), IntentBuildHouse, map[string]any{"player": "ana", "tile": 1})
		if lastLog(w).Kind != LogPolicy || w.Tiles[1].Houses != 0 {
			t.Error("Expected the shortage to block the build")
		}
	})

	t.Run("shortage surcharge under oligarchy", func(t *testing.T) {
		w := newTestWorld(t)
		w.Regime = Oligarchy
		ownBrown(w, "ana")
		w.Bank.Houses = 0
		w = apply(t, w, testEnv(nil), IntentBuildHouse, map[string]any{"player": "ana", "tile": 1})
		if w.Tiles[1].Houses != 1 || w.Bank.Houses != 0 || w.Player("ana").Money != 1425 {
			t.Errorf("Expected an imported house for 75, got %d houses and money %d", w.Tiles[1].Houses, w.Player("ana").Money)
		}
	})
}

func TestSellHouse(t *testing.T) {
	w := newTestWorld(t)
	ownBrown(w, "ana")
	w.Tiles[1].Houses = 2
	w.Bank.Houses = 30
	w = apply(t, w, testEnv(nil), IntentSellHouse, map[string]any{"player": "ana", "tile": 1})
	if w.Tiles[1].Houses != 1 || w.Bank.Houses != 31 || w.Player("ana").Money != 1525 {
		t.Errorf("Expected one house sold for 25, got %d houses and money %d", w.Tiles[1].Houses, w.Player("ana").Money)
	}
}

func TestMortgage(t *testing.T) {
	w := newTestWorld(t)
	w.setOwner(1, playerOwner("ana"))

	w = apply(t, w, testEnv(nil), IntentMortgage, map[string]any{"player": "ana", "tile": 1})
	if !w.Tiles[1].Mortgaged || w.Player("ana").Money != 1530 {
		t.Fatalf("Expected a 30 mortgage, got money %d", w.Player("ana").Money)
	}

	again := apply(t, w, testEnv(nil), IntentMortgage, map[string]any{"player": "ana", "tile": 1})
	if lastLog(again).Kind != LogDenied {
		t.Error("Expected a second mortgage to be denied")
	}

	w = apply(t, w, testEnv(nil), IntentUnmortgage, map[string]any{"player": "ana", "tile": 1})
	if w.Tiles[1].Mortgaged || w.Player("ana").Money != 1497 {
		t.Errorf("Expected the mortgage lifted for 33, got money %d", w.Player("ana").Money)
	}
}

func TestSellToState(t *testing.T) {
	w := newTestWorld(t)
	w.setOwner(1, playerOwner("ana"))
	w = apply(t, w, testEnv(nil), IntentSellToState, map[string]any{"player": "ana", "tile": 1})
	if w.Tiles[1].Owner.Kind != OwnerState || len(w.Player("ana").Owned) != 0 || w.Player("ana").Money != 1530 {
		t.Errorf("Expected the state to buy Mill Lane for 30, got %+v and money %d", w.Tiles[1].Owner, w.Player("ana").Money)
	}

	foreign := apply(t, w, testEnv(nil), IntentSellToState, map[string]any{"player": "ben", "tile": 1})
	if lastLog(foreign).Kind != LogDenied {
		t.Error("Expected selling a tile one does not own to be denied")
	}
}

func TestRepair(t *testing.T) {
	w := newTestWorld(t)
	w.setOwner(1, playerOwner("ana"))
	w.Tiles[1].Broken = true
	w = apply(t, w, testEnv(nil), IntentRepair, map[string]any{"player": "ana", "tile": 1})
	if w.Tiles[1].Broken || w.Player("ana").Money != 1450 {
		t.Errorf("Expected a 50 repair, got broken=%v money %d", w.Tiles[1].Broken, w.Player("ana").Money)
	}
}

func TestOptions_WriteListExercise(t *testing.T) {
	w := newTestWorld(t)
	w.setOwner(1, playerOwner("ana"))
	env := testEnv(nil)

	w = apply(t, w, env, IntentWriteOption, map[string]any{"player": "ana", "tile": 1, "strike": 80})
	if len(w.Options) != 1 || w.Options[0].ID != "opt-1" || w.Options[0].TurnsLeft != 12 {
		t.Fatalf("Expected option opt-1 for 12 turns, got %+v", w.Options)
	}

	premature := apply(t, w, env, IntentExerciseOption, map[string]any{"player": "ben", "option": "opt-1"})
	if lastLog(premature).Kind != LogDenied {
		t.Error("Expected exercising an unsold option to be denied")
	}

	w = apply(t, w, env, IntentListOption, map[string]any{"player": "ana", "option": "opt-1"})
	if w.Auction == nil || w.Auction.Kind != AuctionInstrument || !equalStrings(w.Auction.Bidders, []string{"ben"}) {
		t.Fatalf("Expected an instrument auction for ben, got %+v", w.Auction)
	}
	w = apply(t, w, env, IntentPlaceBid, map[string]any{"player": "ben", "amount": 20})
	for i := 0; i < 10; i++ {
		w = apply(t, w, env, IntentAuctionTick, nil)
	}
	if w.Auction != nil || w.option("opt-1").Holder != "ben" {
		t.Fatalf("Expected ben to hold the option, got %+v", w.option("opt-1"))
	}
	if w.Player("ana").Money != 1520 || w.Player("ben").Money != 1480 {
		t.Errorf("Expected the premium paid to ana, got ana %d ben %d", w.Player("ana").Money, w.Player("ben").Money)
	}

	w = apply(t, w, env, IntentExerciseOption, map[string]any{"player": "ben", "option": "opt-1"})
	if !w.Tiles[1].Owner.IsPlayer("ben") || len(w.Options) != 0 {
		t.Fatalf("Expected ben to take Mill Lane, got %+v", w.Tiles[1].Owner)
	}
	if w.Player("ana").Money != 1600 || w.Player("ben").Money != 1400 {
		t.Errorf("Expected the strike paid to ana, got ana %d ben %d", w.Player("ana").Money, w.Player("ben").Money)
	}
}

func TestOptions_Expire(t *testing.T) {
	w := newTestWorld(t)
	w.setOwner(1, playerOwner("ana"))
	w.Options = []Option{{ID: "opt-9", TileID: 1, Writer: "ana", Holder: "ben", Strike: 50, TurnsLeft: 1}}
	w.HasRolled = true
	w.Phase = PhaseTurnEnded
	w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
	if len(w.Options) != 0 || !hasLog(w, "Option opt-9 on Mill Lane expired") {
		t.Errorf("Expected the option to expire, got %+v", w.Options)
	}
}

func TestOptions_ListedOptionStaysWithTheAuction(t *testing.T) {
	listed := func(t *testing.T) *WorldState {
		t.Helper()
		w := newTestWorld(t, "ana", "ben", "cal")
		w.setOwner(1, playerOwner("ana"))
		w.Options = []Option{{ID: "opt-9", TileID: 1, Writer: "ana", Holder: "ben", Strike: 50, TurnsLeft: 5}}
		env := testEnv(nil)
		w = apply(t, w, env, IntentListOption, map[string]any{"player": "ben", "option": "opt-9"})
		w = apply(t, w, env, IntentPlaceBid, map[string]any{"player": "cal", "amount": 100})
		if w.Auction == nil || w.Auction.HighBidder != "cal" {
			t.Fatalf("Expected cal to lead the option auction, got %+v", w.Auction)
		}
		return w
	}

	t.Run("exercise is refused while listed", func(t *testing.T) {
		w := listed(t)
		next := apply(t, w, testEnv(nil), IntentExerciseOption, map[string]any{"player": "ben", "option": "opt-9"})
		if lastLog(next).Kind != LogDenied || !next.Tiles[1].Owner.IsPlayer("ana") || next.option("opt-9") == nil {
			t.Fatalf("Expected the exercise to be denied, got owner %+v", next.Tiles[1].Owner)
		}
	})

	t.Run("a voided option cancels without payment", func(t *testing.T) {
		w := listed(t)
		w.removeOption("opt-9")
		for i := 0; i < 10 && w.Auction != nil; i++ {
			w = apply(t, w, testEnv(nil), IntentAuctionTick, nil)
		}
		if w.Auction != nil || !hasLog(w, "the listed instrument no longer exists") {
			t.Fatal("Expected the auction to be cancelled")
		}
		if w.Player("cal").Money != 1500 || w.Player("ben").Money != 1500 {
			t.Errorf("Expected no transfer, got cal %d ben %d", w.Player("cal").Money, w.Player("ben").Money)
		}
	})

	t.Run("bankrupt lister cancels at once", func(t *testing.T) {
		w := listed(t)
		w.Debt = &Debt{Debtor: "ben", Creditor: StateID, Amount: 5000, Reason: "tax"}
		w = apply(t, w, testEnv(nil), IntentDeclareBankruptcy, map[string]any{"player": "ben"})
		if w.Auction != nil || !hasLog(w, "the listed instrument no longer exists") {
			t.Fatalf("Expected the option auction to be cancelled, got %+v", w.Auction)
		}
		if w.Player("cal").Money != 1500 {
			t.Errorf("Expected cal to keep the bid, got %d", w.Player("cal").Money)
		}
	})
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
