package engine

import "testing"

// endable returns a world whose current turn can be ended
func endable(t *testing.T, regime Regime, ids ...string) *WorldState {
	t.Helper()
	w := newTestWorld(t, ids...)
	w.Regime = regime
	w.HasRolled = true
	w.Phase = PhaseTurnEnded
	return w
}

func TestGovernmentCycle_WealthTax(t *testing.T) {
	w := endable(t, Socialism)
	w.Players[0].Money = 3000
	rebalance(w)
	treasury := w.Treasury

	w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
	if w.Player("ana").Money != 2900 {
		t.Errorf("Expected 100 wealth tax, got money %d", w.Player("ana").Money)
	}
	if w.Player("ben").Money != 1500 {
		t.Errorf("Expected ben below the threshold to pay nothing, got %d", w.Player("ben").Money)
	}
	if w.Treasury != treasury+100 {
		t.Errorf("Expected the treasury credited 100, got %d", w.Treasury-treasury)
	}
	if !hasLog(w, "Wealth tax: ana pays 100") {
		t.Error("Expected the wealth tax to be logged")
	}
	if w.Current().ID != "ben" || w.RegimeTurnsLeft != 7 {
		t.Errorf("Expected ben's turn with 7 regime turns left, got %s and %d", w.Current().ID, w.RegimeTurnsLeft)
	}
}

func TestGovernmentCycle_Collapse(t *testing.T) {
	w := endable(t, Oligarchy)
	w.Players[0].Offshore = 1000
	w.Treasury = 10
	rebalance(w)

	w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
	if w.Player("ana").Offshore != 1080 {
		t.Errorf("Expected 80 offshore interest, got %d", w.Player("ana").Offshore)
	}
	if w.Treasury != 0 || w.Minted != 70 {
		t.Errorf("Expected the 70 deficit minted, got treasury %d minted %d", w.Treasury, w.Minted)
	}
	if w.Regime != Anarchy || w.RegimeTurnsLeft != 8 {
		t.Errorf("Expected anarchy for a fresh term, got %s with %d", w.Regime, w.RegimeTurnsLeft)
	}
	if !hasLog(w, "collapsed") {
		t.Error("Expected the collapse to be logged")
	}
}

func TestGovernmentCycle_Expropriation(t *testing.T) {
	w := endable(t, Socialism)
	ownBrown(w, "ben")
	w.Options = []Option{{ID: "opt-3", TileID: 1, Writer: "ben", Holder: "ana", Strike: 10, TurnsLeft: 5}}

	w = apply(t, w, testEnv(nil, 0.05), IntentEndTurn, nil)
	if w.Tiles[1].Owner.Kind != OwnerState || w.Tiles[3].Owner.Kind != OwnerState {
		t.Errorf("Expected the brown group nationalized, got %+v and %+v", w.Tiles[1].Owner, w.Tiles[3].Owner)
	}
	if len(w.Player("ben").Owned) != 0 || len(w.Options) != 0 {
		t.Errorf("Expected ben's holdings and options cleared, got %v and %v", w.Player("ben").Owned, w.Options)
	}
}

func TestGovernmentCycle_DevelopedGroupIsSpared(t *testing.T) {
	w := endable(t, Socialism)
	ownBrown(w, "ben")
	w.Tiles[3].Houses = 1
	w.Bank.Houses--

	w = apply(t, w, testEnv(nil, 0.05), IntentEndTurn, nil)
	if !w.Tiles[1].Owner.IsPlayer("ben") {
		t.Error("Expected a developed group to be spared")
	}
}

func TestGovernmentCycle_Stipends(t *testing.T) {
	t.Run("democracy pays humans", func(t *testing.T) {
		w := endable(t, Democracy)
		w.Players[1].IsBot = true
		w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
		if w.Player("ana").Money != 1520 || w.Player("ben").Money != 1500 {
			t.Errorf("Expected a 20 stipend for ana only, got ana %d ben %d", w.Player("ana").Money, w.Player("ben").Money)
		}
	})

	t.Run("dictatorship levies men only", func(t *testing.T) {
		w := endable(t, Dictatorship)
		w.Players[0].Gender = "female"
		w.Players[1].Gender = "male"
		w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
		if w.Player("ana").Money != 1500 || w.Player("ben").Money != 1485 || w.Treasury != 20015 {
			t.Errorf("Expected a 15 levy on ben only, got ana %d ben %d treasury %d", w.Player("ana").Money, w.Player("ben").Money, w.Treasury)
		}
		if !hasLog(w, "ben pays a 15 levy") || hasLog(w, "ana pays") {
			t.Error("Expected only ben's levy in the log")
		}
	})

	t.Run("no gender no levy", func(t *testing.T) {
		w := endable(t, Dictatorship)
		w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
		if w.Player("ana").Money != 1500 || w.Player("ben").Money != 1500 {
			t.Errorf("Expected no levy without a matching gender, got ana %d ben %d", w.Player("ana").Money, w.Player("ben").Money)
		}
	})
}

func TestGovernmentCycle_Welfare(t *testing.T) {
	w := endable(t, Democracy)
	w.Players[1].Money = 100
	rebalance(w)
	w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
	// 20% of the poverty line, then the stipend
	if w.Player("ben").Money != 180 {
		t.Errorf("Expected 60 welfare and 20 stipend, got %d", w.Player("ben").Money)
	}
}

func TestGovernmentCycle_EvictsSquatters(t *testing.T) {
	w := endable(t, Democracy)
	w.setOwner(1, stateOwner)
	w.Tiles[1].OccupiedBy = "ben"
	w.Tiles[1].EvictionTimer = 3
	w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
	if w.Tiles[1].OccupiedBy != "" || !hasLog(w, "Squatters evicted from Mill Lane") {
		t.Error("Expected the squatter to be evicted under democracy")
	}
}

func TestGovernmentCycle_Privatization(t *testing.T) {
	w := endable(t, Oligarchy)
	w.setOwner(1, stateOwner)
	w = apply(t, w, testEnv(nil, 0.1), IntentEndTurn, nil)
	if w.Auction == nil || w.Auction.TileIDs[0] != 1 {
		t.Fatalf("Expected Mill Lane up for auction, got %+v", w.Auction)
	}
	blocked := apply(t, endableFrom(w), testEnv(nil), IntentEndTurn, nil)
	if lastLog(blocked).Kind != LogDenied {
		t.Error("Expected END_TURN to wait for the open auction")
	}
}

func endableFrom(w *WorldState) *WorldState {
	next := w.Clone()
	next.HasRolled = true
	next.Phase = PhaseTurnEnded
	return next
}

func TestGovernmentCycle_TermEnds(t *testing.T) {
	t.Run("election opens", func(t *testing.T) {
		w := endable(t, Democracy)
		w.RegimeTurnsLeft = 1
		// disaster and weather stay quiet; the election draw succeeds
		w = apply(t, w, testEnv(nil, 0.999, 0.999, 0.1), IntentEndTurn, nil)
		if w.Election == nil || !w.Election.Open {
			t.Fatal("Expected an election to open")
		}
		if w.Regime != Democracy {
			t.Errorf("Expected democracy to hold during the vote, got %s", w.Regime)
		}
	})

	t.Run("succession without a vote", func(t *testing.T) {
		w := endable(t, Democracy)
		w.RegimeTurnsLeft = 1
		w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
		if w.Election != nil || w.Regime != Socialism || w.RegimeTurnsLeft != 8 {
			t.Errorf("Expected socialism for 8 turns, got %s for %d", w.Regime, w.RegimeTurnsLeft)
		}
	})

	t.Run("open election freezes the term", func(t *testing.T) {
		w := endable(t, Democracy)
		w.RegimeTurnsLeft = 0
		openElection(w)
		w = apply(t, w, testEnv(nil), IntentEndTurn, nil)
		if w.RegimeTurnsLeft != 0 || w.Election == nil {
			t.Errorf("Expected the term frozen during the vote, got %d", w.RegimeTurnsLeft)
		}
	})
}

func TestElection_Voting(t *testing.T) {
	t.Run("tie broken among the tied", func(t *testing.T) {
		w := newTestWorld(t)
		openElection(w)
		env := testEnv([]int{1})
		w = apply(t, w, env, IntentCastVote, map[string]any{"player": "ana", "regime": "oligarchy"})
		if w.Election == nil {
			t.Fatal("Expected the election to wait for ben")
		}
		twice := apply(t, w, env, IntentCastVote, map[string]any{"player": "ana", "regime": "anarchy"})
		if lastLog(twice).Kind != LogDenied {
			t.Error("Expected a second ballot to be denied")
		}
		w = apply(t, w, env, IntentCastVote, map[string]any{"player": "ben", "regime": "socialism"})
		// leaders in canonical order are socialism then oligarchy; the draw of 1 picks oligarchy
		if w.Election != nil || w.Regime != Oligarchy || w.RegimeTurnsLeft != 10 {
			t.Errorf("Expected oligarchy for 10 turns, got %s for %d", w.Regime, w.RegimeTurnsLeft)
		}
	})

	t.Run("union leader counts double", func(t *testing.T) {
		w := newTestWorld(t, "ana", "ben", "cleo")
		w.Players[0].Role = RoleUnionLeader
		openElection(w)
		env := testEnv(nil)
		w = apply(t, w, env, IntentCastVote, map[string]any{"player": "ana", "regime": "anarchy"})
		w = apply(t, w, env, IntentCastVote, map[string]any{"player": "ben", "regime": "socialism"})
		w = apply(t, w, env, IntentCastVote, map[string]any{"player": "cleo", "regime": "dictatorship"})
		if w.Regime != Anarchy {
			t.Errorf("Expected the weighted vote to carry anarchy, got %s", w.Regime)
		}
	})

	t.Run("invalid ballot", func(t *testing.T) {
		w := newTestWorld(t)
		openElection(w)
		w = apply(t, w, testEnv(nil), IntentCastVote, map[string]any{"player": "ana", "regime": "monarchy"})
		if lastLog(w).Kind != LogDenied {
			t.Error("Expected an unknown regime to be refused")
		}
	})

	t.Run("close early", func(t *testing.T) {
		w := newTestWorld(t)
		openElection(w)
		w = apply(t, w, testEnv(nil), IntentCastVote, map[string]any{"player": "ana", "regime": "dictatorship"})
		w = apply(t, w, testEnv(nil), IntentCloseElection, nil)
		if w.Election != nil || w.Regime != Dictatorship {
			t.Errorf("Expected dictatorship after closing, got %s", w.Regime)
		}
	})
}

func TestElectionWinner_TieOnlyPicksLeaders(t *testing.T) {
	tally := map[Regime]int{Democracy: 2, Oligarchy: 2, Socialism: 1}
	seen := map[Regime]bool{}
	for seed := uint64(1); seed <= 200; seed++ {
		winner := ElectionWinner(tally, NewSeededEntropy(seed))
		if winner != Democracy && winner != Oligarchy {
			t.Fatalf("Seed %d picked %s, which was not tied for the lead", seed, winner)
		}
		seen[winner] = true
	}
	if !seen[Democracy] || !seen[Oligarchy] {
		t.Errorf("Expected both tied regimes to win sometimes, got %v", seen)
	}

	if got := ElectionWinner(map[Regime]int{Anarchy: 3, Democracy: 1}, &ScriptedEntropy{}); got != Anarchy {
		t.Errorf("Expected the clear leader, got %s", got)
	}
}

func TestRegimeRoster(t *testing.T) {
	roster := RegimeRoster()
	if len(roster) != len(AllRegimes) {
		t.Fatalf("Expected %d regimes, got %d", len(AllRegimes), len(roster))
	}
	for i, entry := range roster {
		if entry.Regime != AllRegimes[i] || len(entry.Effects) == 0 {
			t.Errorf("Expected %s with effects, got %+v", AllRegimes[i], entry)
		}
	}
	if !roster[4].Config.JailNullified || roster[2].Config.RentSurchargePct != 10 {
		t.Error("Expected the anarchy and oligarchy records")
	}
}
