package engine

// Env carries the dependencies a transition may draw on
type Env struct {
	Rand   Entropy
	Tuning Tuning
}

// Stage is one reducer of the pipeline. Handle reports handled=false to pass
// the intent on; a handled stage returns either the previous world (documented
// no-op) or a fresh clone.
type Stage struct {
	Name    string
	Intents []string
	Handle  func(w *WorldState, in Intent, env Env) (*WorldState, bool)
}

// Pipeline is the fixed dispatch order
var Pipeline = []Stage{
	{Name: "lifecycle", Intents: lifecycleIntents, Handle: lifecycleStage},
	{Name: "abilities", Intents: abilityIntents, Handle: abilitiesStage},
	{Name: "market", Intents: marketIntents, Handle: marketStage},
	{Name: "elections", Intents: electionIntents, Handle: electionStage},
	{Name: "movement", Intents: movementIntents, Handle: movementStage},
	{Name: "property", Intents: propertyIntents, Handle: propertyStage},
	{Name: "auction", Intents: auctionIntents, Handle: auctionStage},
	{Name: "trade", Intents: tradeIntents, Handle: tradeStage},
	{Name: "finance", Intents: financeIntents, Handle: financeStage},
	{Name: "minigame", Intents: minigameIntents, Handle: minigameStage},
}

// Transition applies one intent. It never fails: ineligible actions come back
// as the same world plus a log line, and unknown intents are the identity.
func Transition(w *WorldState, in Intent, env Env) *WorldState {
	if env.Rand == nil {
		env.Rand = &ScriptedEntropy{}
	}
	if w == nil {
		if in.Type == IntentRestoreState && in.State != nil {
			return in.State.Clone()
		}
		return nil
	}
	if w.Phase == PhaseGameOver && in.Type != IntentRestoreState && in.Type != IntentLogMessage {
		return w
	}
	for _, stage := range Pipeline {
		if next, handled := stage.Handle(w, in, env); handled {
			return next
		}
	}
	return w
}

// StageFor returns the name of the stage that owns an intent type, or ""
func StageFor(intentType string) string {
	for _, stage := range Pipeline {
		if containsString(stage.Intents, intentType) {
			return stage.Name
		}
	}
	return ""
}

// deny rejects an ineligible action with a log line
func deny(w *WorldState, format string, args ...any) (*WorldState, bool) {
	next := w.Clone()
	next.logf(LogDenied, format, args...)
	return next, true
}

// forbid rejects an action the active regime does not allow
func forbid(w *WorldState, format string, args ...any) (*WorldState, bool) {
	next := w.Clone()
	next.logf(LogPolicy, format, args...)
	return next, true
}

// ready reports whether the game accepts play intents
func ready(w *WorldState) bool {
	return w.Started && w.Phase != PhaseGameOver
}

// settleTurnPhase moves the turn forward once no landing decision is pending
func (w *WorldState) settleTurnPhase() {
	if w.Phase == PhaseGameOver || !w.Started {
		return
	}
	if w.Phase == PhaseAwaitingRoll && !w.HasRolled {
		return
	}
	cur := w.Current()
	if w.PendingMoves > 0 {
		w.Phase = PhaseMoving
		return
	}
	if w.PendingPurchase != nil || len(w.MovementOptions) > 0 || w.Minigame != nil ||
		(w.Debt != nil && cur != nil && w.Debt.Debtor == cur.ID) {
		w.Phase = PhaseLandedDecision
		return
	}
	if cur != nil && cur.Alive && cur.JailTurns == 0 && (w.RolledDoubles || w.ExtraTurn) {
		w.Phase = PhaseAwaitingRoll
		w.HasRolled = false
		w.RolledDoubles = false
		w.ExtraTurn = false
		w.HopUsed = false
		w.logf(LogInfo, "%s rolls again", cur.Name)
		return
	}
	w.Phase = PhaseTurnEnded
}
