package engine

var electionIntents = []string{IntentCastVote, IntentCloseElection}

func electionStage(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	switch in.Type {
	case IntentCastVote:
		return castVote(w, in, env)
	case IntentCloseElection:
		if w.Election == nil {
			return deny(w, "No election is open")
		}
		next := w.Clone()
		tallyElection(next, env)
		return next, true
	}
	return w, false
}

func openElection(w *WorldState) {
	tally := make(map[Regime]int, len(AllRegimes))
	for _, r := range AllRegimes {
		tally[r] = 0
	}
	w.Election = &Election{Open: true, Tally: tally, Voted: []string{}}
	w.logf(LogRegime, "The term of %s is over; the polls are open", w.Regime)
}

func castVote(w *WorldState, in Intent, env Env) (*WorldState, bool) {
	var vp votePayload
	if err := decodePayload(in, &vp); err != nil {
		return deny(w, "Vote rejected: %v", err)
	}
	if w.Election == nil || !w.Election.Open {
		return deny(w, "Vote rejected: no election is open")
	}
	pl := w.actor(vp.Player)
	regime := Regime(vp.Regime)
	switch {
	case pl == nil || !pl.Alive:
		return deny(w, "Vote rejected: unknown voter %s", vp.Player)
	case containsString(w.Election.Voted, pl.ID):
		return deny(w, "Vote rejected: %s already voted", pl.Name)
	case !regime.Valid():
		return deny(w, "Vote rejected: %q is not on the ballot", vp.Regime)
	}

	next := w.Clone()
	weight := traitsFor(pl.Role).VoteWeight
	next.Election.Tally[regime] += weight
	next.Election.Voted = append(next.Election.Voted, pl.ID)
	next.logf(LogRegime, "%s cast a ballot", pl.Name)

	if len(next.Election.Voted) >= next.AliveCount() {
		tallyElection(next, env)
	}
	return next, true
}

// tallyElection installs the plurality winner; ties are broken uniformly at random
// among the tied regimes only
func tallyElection(w *WorldState, env Env) {
	e := w.Election
	w.Election = nil
	if e == nil {
		return
	}
	winner := ElectionWinner(e.Tally, env.Rand)
	w.Regime = winner
	w.RegimeTurnsLeft = env.Tuning.ElectionTermTurns
	w.logf(LogRegime, "%s wins the election with %d votes", winner, e.Tally[winner])
}

// ElectionWinner picks the regime with the most votes. Tied leaders are
// considered in canonical regime order and one is drawn at random.
func ElectionWinner(tally map[Regime]int, r Entropy) Regime {
	best := -1
	var leaders []Regime
	for _, regime := range AllRegimes {
		votes := tally[regime]
		switch {
		case votes > best:
			best = votes
			leaders = []Regime{regime}
		case votes == best:
			leaders = append(leaders, regime)
		}
	}
	if len(leaders) == 1 {
		return leaders[0]
	}
	return leaders[r.Intn(len(leaders))]
}
