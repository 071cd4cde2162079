package engine

import "testing"

func atCasino(t *testing.T) (*WorldState, Env) {
	t.Helper()
	w := newTestWorld(t)
	w.Players[0].Position = 14
	env := testEnv(Dice(1, 2))
	w = apply(t, w, env, IntentRollDice, nil)
	w = apply(t, w, env, IntentMoveToken, nil)
	if w.Minigame == nil || w.Minigame.Kind != MinigameCasino || w.Phase != PhaseLandedDecision {
		t.Fatalf("Expected a casino stake pending, got %+v in %s", w.Minigame, w.Phase)
	}
	return w, env
}

func TestMinigame_Outcomes(t *testing.T) {
	tests := []struct {
		outcome  string
		amount   int
		money    int
		treasury int
	}{
		{OutcomeWin, 50, 1550, 19950},
		{OutcomePush, 0, 1500, 20000},
		{OutcomeLose, 0, 1400, 20100},
	}
	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			w, env := atCasino(t)
			w = apply(t, w, env, IntentPlaceWager, map[string]any{"player": "ana", "amount": 100})
			if w.EscrowBalance != 100 || w.Player("ana").Money != 1400 {
				t.Fatalf("Expected 100 in escrow, got %d", w.EscrowBalance)
			}
			w = apply(t, w, env, IntentMinigameResult, map[string]any{"player": "ana", "outcome": tt.outcome, "amount": tt.amount})
			if w.Player("ana").Money != tt.money || w.Treasury != tt.treasury || w.EscrowBalance != 0 {
				t.Errorf("Expected money %d treasury %d, got %d and %d", tt.money, tt.treasury, w.Player("ana").Money, w.Treasury)
			}
			if w.Minigame != nil || w.Phase != PhaseTurnEnded {
				t.Errorf("Expected the stake settled and the turn over, got %s", w.Phase)
			}
		})
	}
}

func TestMinigame_Forfeit(t *testing.T) {
	w, env := atCasino(t)
	w = apply(t, w, env, IntentPlaceWager, map[string]any{"player": "ana", "amount": 60})
	w = apply(t, w, env, IntentForfeitMinigame, map[string]any{"player": "ana"})
	if w.Player("ana").Money != 1440 || w.Treasury != 20060 || w.Minigame != nil {
		t.Errorf("Expected the wager forfeited to the treasury, got money %d treasury %d", w.Player("ana").Money, w.Treasury)
	}
}

func TestMinigame_Rejections(t *testing.T) {
	w, env := atCasino(t)

	stranger := apply(t, w, env, IntentPlaceWager, map[string]any{"player": "ben", "amount": 10})
	if lastLog(stranger).Kind != LogDenied {
		t.Error("Expected another player's wager to be denied")
	}
	early := apply(t, w, env, IntentMinigameResult, map[string]any{"player": "ana", "outcome": OutcomeWin, "amount": 500})
	if lastLog(early).Kind != LogDenied {
		t.Error("Expected a result before any wager to be denied")
	}
	greedy := apply(t, w, env, IntentPlaceWager, map[string]any{"player": "ana", "amount": 5000})
	if lastLog(greedy).Kind != LogDenied {
		t.Error("Expected a wager beyond the balance to be denied")
	}
}

func TestMinigame_WinningsCappedByTreasury(t *testing.T) {
	w, env := atCasino(t)
	w.Treasury = 30
	rebalance(w)
	w = apply(t, w, env, IntentPlaceWager, map[string]any{"player": "ana", "amount": 100})
	w = apply(t, w, env, IntentMinigameResult, map[string]any{"player": "ana", "outcome": OutcomeWin, "amount": 500})
	if w.Player("ana").Money != 1530 || w.Treasury != 0 {
		t.Errorf("Expected the payout capped at 30, got money %d treasury %d", w.Player("ana").Money, w.Treasury)
	}
}
