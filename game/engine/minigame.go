package engine

// Minigame outcomes reported by MINIGAME_RESULT
const (
	OutcomeWin  = "win"
	OutcomeLose = "lose"
	OutcomePush = "push"
)

var minigameIntents = []string{IntentPlaceWager, IntentMinigameResult, IntentForfeitMinigame}

// minigameStage is the money contract of casino and slots. The games themselves
// run elsewhere; the engine only escrows the wager and settles the reported result.
func minigameStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentPlaceWager, IntentMinigameResult, IntentForfeitMinigame:
	default:
		return w, false
	}
	var mp minigamePayload
	if err := decodePayload(in, &mp); err != nil {
		return deny(w, "Minigame rejected: %v", err)
	}
	stake := w.Minigame
	if stake == nil {
		return deny(w, "Minigame rejected: no game is waiting")
	}
	pl := w.actor(mp.Player)
	if pl == nil || pl.ID != stake.PlayerID {
		return deny(w, "Minigame rejected: the seat belongs to %s", w.nameOf(stake.PlayerID))
	}

	switch in.Type {
	case IntentPlaceWager:
		switch {
		case stake.Wager > 0:
			return deny(w, "Wager rejected: %s already staked %d", pl.Name, stake.Wager)
		case mp.Amount <= 0 || pl.Money < mp.Amount:
			return deny(w, "Wager rejected: %s cannot stake %d", pl.Name, mp.Amount)
		}
		next := w.Clone()
		next.pay(pl.ID, escrowAccount, mp.Amount)
		next.Minigame.Wager = mp.Amount
		next.logf(LogMoney, "%s stakes %d at the %s", pl.Name, mp.Amount, stake.Kind)
		return next, true

	case IntentMinigameResult:
		if stake.Wager == 0 {
			return deny(w, "Result rejected: nothing was staked")
		}
		next := w.Clone()
		settleMinigame(next, mp.Outcome, mp.Amount)
		next.settleTurnPhase()
		return next, true
	}

	next := w.Clone()
	if stake.Wager > 0 {
		next.pay(escrowAccount, StateID, stake.Wager)
		next.logf(LogMoney, "%s walks away and forfeits %d", pl.Name, stake.Wager)
	} else {
		next.logf(LogInfo, "%s passes on the %s", pl.Name, stake.Kind)
	}
	next.Minigame = nil
	next.settleTurnPhase()
	return next, true
}

// settleMinigame pays out a reported result. Winnings beyond the wager come from
// the treasury, capped at what it holds.
func settleMinigame(w *WorldState, outcome string, amount int) {
	stake := *w.Minigame
	w.Minigame = nil
	p := w.Player(stake.PlayerID)
	switch outcome {
	case OutcomeWin:
		w.pay(escrowAccount, p.ID, stake.Wager)
		if amount > w.Treasury {
			amount = w.Treasury
		}
		if amount > 0 {
			w.pay(StateID, p.ID, amount)
		}
		w.logf(LogMoney, "%s wins %d at the %s", p.Name, amount, stake.Kind)
	case OutcomePush:
		w.pay(escrowAccount, p.ID, stake.Wager)
		w.logf(LogMoney, "%s breaks even at the %s", p.Name, stake.Kind)
	default:
		w.pay(escrowAccount, StateID, stake.Wager)
		w.logf(LogMoney, "%s loses %d at the %s", p.Name, stake.Wager, stake.Kind)
	}
}
