package engine

import "testing"

func tradeWorld(t *testing.T) *WorldState {
	t.Helper()
	w := newTestWorld(t)
	w.setOwner(1, playerOwner("ana"))
	w.setOwner(3, playerOwner("ben"))
	w = apply(t, w, testEnv(nil), IntentBuyShares, map[string]any{"player": "ana", "company": "rail", "count": 2})
	return w
}

var swapOffer = map[string]any{
	"player":      "ana",
	"to":          "ben",
	"give_money":  100,
	"give_tiles":  []any{1},
	"take_tiles":  []any{3},
	"give_shares": map[string]any{"rail": 2},
}

func TestTrade_AcceptAppliesEveryLeg(t *testing.T) {
	env := testEnv(nil)
	w := apply(t, tradeWorld(t), env, IntentProposeTrade, swapOffer)
	if w.Trade == nil || w.Trade.From != "ana" || w.Trade.To != "ben" {
		t.Fatalf("Expected a pending trade from ana to ben, got %+v", w.Trade)
	}

	wrong := apply(t, w, env, IntentAcceptTrade, map[string]any{"player": "ana"})
	if lastLog(wrong).Kind != LogDenied || wrong.Trade == nil {
		t.Error("Expected only the target to be able to accept")
	}

	w = apply(t, w, env, IntentAcceptTrade, map[string]any{"player": "ben"})
	if w.Trade != nil {
		t.Fatal("Expected the trade to be consumed")
	}
	if !equalInts(w.Player("ana").Owned, []int{3}) || !equalInts(w.Player("ben").Owned, []int{1}) {
		t.Errorf("Expected the tiles swapped, got ana %v ben %v", w.Player("ana").Owned, w.Player("ben").Owned)
	}
	if w.Player("ana").Money != 1300 || w.Player("ben").Money != 1600 {
		t.Errorf("Expected 100 to move, got ana %d ben %d", w.Player("ana").Money, w.Player("ben").Money)
	}
	if rail := w.company("rail"); rail.Holders["ben"] != 2 || rail.Holders["ana"] != 0 {
		t.Errorf("Expected the shares with ben, got %+v", rail.Holders)
	}
}

func TestTrade_StaleLegRejectsWholeTrade(t *testing.T) {
	env := testEnv(nil)
	w := apply(t, tradeWorld(t), env, IntentProposeTrade, swapOffer)
	w = apply(t, w, env, IntentDebugMoney, map[string]any{"player": "ana", "amount": 50})

	after := apply(t, w, env, IntentAcceptTrade, map[string]any{"player": "ben"})
	if lastLog(after).Kind != LogDenied {
		t.Fatal("Expected the accept to be denied")
	}
	if !after.Tiles[1].Owner.IsPlayer("ana") || !after.Tiles[3].Owner.IsPlayer("ben") {
		t.Error("Expected no tile to move")
	}
	if after.Player("ana").Money != 50 || after.Player("ben").Money != 1500 {
		t.Errorf("Expected no money to move, got ana %d ben %d", after.Player("ana").Money, after.Player("ben").Money)
	}
	if after.company("rail").Holders["ana"] != 2 {
		t.Error("Expected no shares to move")
	}
}

func TestTrade_Validation(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(w *WorldState)
		payload map[string]any
		kind    string
	}{
		{
			name:    "banned under dictatorship",
			setup:   func(w *WorldState) { w.Regime = Dictatorship },
			payload: swapOffer,
			kind:    LogPolicy,
		},
		{
			name:    "tile not owned",
			payload: map[string]any{"player": "ana", "to": "ben", "give_tiles": []any{3}},
			kind:    LogDenied,
		},
		{
			name:    "developed tile",
			setup:   func(w *WorldState) { w.Tiles[1].Houses = 1 },
			payload: swapOffer,
			kind:    LogDenied,
		},
		{
			name: "tile under option",
			setup: func(w *WorldState) {
				w.Options = []Option{{ID: "opt-7", TileID: 1, Writer: "ana", Holder: "ana", Strike: 10, TurnsLeft: 5}}
			},
			payload: swapOffer,
			kind:    LogDenied,
		},
		{
			name:    "empty trade",
			payload: map[string]any{"player": "ana", "to": "ben"},
			kind:    LogDenied,
		},
		{
			name:    "with oneself",
			payload: map[string]any{"player": "ana", "to": "ana", "give_money": 5},
			kind:    LogDenied,
		},
		{
			name:    "too much money asked",
			payload: map[string]any{"player": "ana", "to": "ben", "take_money": 5000},
			kind:    LogDenied,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tradeWorld(t)
			if tt.setup != nil {
				tt.setup(w)
			}
			w = apply(t, w, testEnv(nil), IntentProposeTrade, tt.payload)
			if w.Trade != nil || lastLog(w).Kind != tt.kind {
				t.Errorf("Expected a %s rejection, got %+v", tt.kind, lastLog(w))
			}
		})
	}
}

func TestTrade_RejectAndClose(t *testing.T) {
	env := testEnv(nil)
	w := apply(t, tradeWorld(t), env, IntentProposeTrade, swapOffer)

	closedByTarget := apply(t, w, env, IntentCloseTrade, map[string]any{"player": "ben"})
	if closedByTarget.Trade == nil {
		t.Error("Expected only the initiator to close the trade")
	}

	rejected := apply(t, w, env, IntentRejectTrade, map[string]any{"player": "ben"})
	if rejected.Trade != nil || !hasLog(rejected, "ben rejected trade") {
		t.Error("Expected ben to reject the trade")
	}

	closed := apply(t, w, env, IntentCloseTrade, map[string]any{"player": "ana"})
	if closed.Trade != nil || !hasLog(closed, "ana withdrew trade") {
		t.Error("Expected ana to withdraw the trade")
	}
}

func TestTrade_RegimeChangeBlocksAccept(t *testing.T) {
	env := testEnv(nil)
	w := apply(t, tradeWorld(t), env, IntentProposeTrade, swapOffer)
	w.Regime = Dictatorship
	w = apply(t, w, env, IntentAcceptTrade, map[string]any{"player": "ben"})
	if lastLog(w).Kind != LogPolicy || !w.Tiles[1].Owner.IsPlayer("ana") {
		t.Error("Expected the accept to be forbidden under dictatorship")
	}
}
