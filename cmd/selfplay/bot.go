package main

import (
	"sort"

	"golang.org/x/exp/rand"

	"github.com/wricardo/statecraft/game/engine"
)

// Bot picks the next intent for whoever has something to decide. It plays
// legally most of the time and, with probability Noise, sends a random intent
// from the whole catalogue so the rejection paths are exercised too.
type Bot struct {
	rng   *rand.Rand
	noise float64

	// consecutive intents that changed nothing or were refused
	stuck int
}

// NewBot creates a bot with its own seeded source
func NewBot(seed uint64, noise float64) *Bot {
	return &Bot{
		rng:   rand.New(rand.NewSource(seed)),
		noise: noise,
	}
}

// Observe tells the bot whether its last intent made progress
func (b *Bot) Observe(progressed bool) {
	if progressed {
		b.stuck = 0
		return
	}
	b.stuck++
}

var catalogue = []string{
	engine.IntentRollDice, engine.IntentMoveToken, engine.IntentChooseHop, engine.IntentSkipHop,
	engine.IntentPayBail, engine.IntentBuyProperty, engine.IntentDeclineProperty,
	engine.IntentMortgage, engine.IntentUnmortgage, engine.IntentBuildHouse, engine.IntentSellHouse,
	engine.IntentSellToState, engine.IntentRepair, engine.IntentWriteOption, engine.IntentExerciseOption,
	engine.IntentStartAuction, engine.IntentListShares, engine.IntentListOption,
	engine.IntentPlaceBid, engine.IntentWithdrawBid, engine.IntentAuctionTick,
	engine.IntentProposeTrade, engine.IntentAcceptTrade, engine.IntentRejectTrade, engine.IntentCloseTrade,
	engine.IntentPayDebt, engine.IntentDeclareBankruptcy,
	engine.IntentPlaceWager, engine.IntentMinigameResult, engine.IntentForfeitMinigame,
	engine.IntentCastVote, engine.IntentCloseElection,
	engine.IntentBuyShares, engine.IntentSellShares, engine.IntentBuyContraband,
	engine.IntentUseContraband, engine.IntentSabotage, engine.IntentClaimCorruption,
	engine.IntentDepositOffshore, engine.IntentWithdrawOffshore,
	engine.IntentEndTurn,
}

// Next returns the intent to send for world w
func (b *Bot) Next(w *engine.WorldState) engine.Intent {
	if b.rng.Float64() < b.noise {
		return b.random(w)
	}

	switch {
	case w.Debt != nil:
		return b.settle(w, w.Debt)
	case w.Minigame != nil:
		return b.gamble(w.Minigame, w)
	case w.Auction != nil:
		return b.bid(w, w.Auction)
	case w.Trade != nil:
		return b.answer(w.Trade)
	case w.Election != nil && w.Election.Open:
		return b.vote(w, w.Election)
	}

	cur := w.Current()
	if cur == nil {
		return engine.NewIntent(engine.IntentEndTurn, nil)
	}
	who := map[string]any{"player": cur.ID}

	switch w.Phase {
	case engine.PhaseAwaitingRoll:
		if cur.JailTurns > 0 && b.rng.Float64() < 0.5 {
			return engine.NewIntent(engine.IntentPayBail, who)
		}
		if b.stuck == 0 && b.rng.Float64() < 0.2 {
			return b.manage(w, cur)
		}
		return engine.NewIntent(engine.IntentRollDice, who)

	case engine.PhaseMoving:
		return engine.NewIntent(engine.IntentMoveToken, who)

	case engine.PhaseLandedDecision:
		if len(w.MovementOptions) > 0 {
			if b.rng.Float64() < 0.5 {
				return engine.NewIntent(engine.IntentSkipHop, who)
			}
			return engine.NewIntent(engine.IntentChooseHop, map[string]any{
				"player": cur.ID,
				"tile":   w.MovementOptions[b.rng.Intn(len(w.MovementOptions))],
			})
		}
		if w.PendingPurchase != nil {
			t := w.Tile(*w.PendingPurchase)
			if t != nil && cur.Money >= t.Price && b.rng.Float64() < 0.7 {
				return engine.NewIntent(engine.IntentBuyProperty, who)
			}
			return engine.NewIntent(engine.IntentDeclineProperty, who)
		}

	case engine.PhaseTurnEnded:
		if b.stuck == 0 && b.rng.Float64() < 0.05 {
			if in, ok := b.proposeTrade(w, cur); ok {
				return in
			}
		}
	}
	return engine.NewIntent(engine.IntentEndTurn, who)
}

func (b *Bot) settle(w *engine.WorldState, d *engine.Debt) engine.Intent {
	debtor := w.Player(d.Debtor)
	who := map[string]any{"player": d.Debtor}
	if debtor == nil {
		return engine.NewIntent(engine.IntentPayDebt, who)
	}
	if debtor.Money >= d.Amount {
		return engine.NewIntent(engine.IntentPayDebt, who)
	}
	if b.stuck < 4 {
		for _, id := range debtor.Owned {
			t := w.Tile(id)
			if t.Houses > 0 || t.Hotel {
				return engine.NewIntent(engine.IntentSellHouse, map[string]any{"player": d.Debtor, "tile": id})
			}
		}
		for _, id := range debtor.Owned {
			if t := w.Tile(id); !t.Mortgaged {
				return engine.NewIntent(engine.IntentMortgage, map[string]any{"player": d.Debtor, "tile": id})
			}
		}
	}
	return engine.NewIntent(engine.IntentDeclareBankruptcy, who)
}

func (b *Bot) gamble(stake *engine.MinigameStake, w *engine.WorldState) engine.Intent {
	p := w.Player(stake.PlayerID)
	who := map[string]any{"player": stake.PlayerID}
	if stake.Wager == 0 {
		if p != nil && p.Money >= 10 && b.rng.Float64() < 0.6 {
			return engine.NewIntent(engine.IntentPlaceWager, map[string]any{
				"player": stake.PlayerID,
				"amount": min(p.Money, 10+b.rng.Intn(50)),
			})
		}
		return engine.NewIntent(engine.IntentForfeitMinigame, who)
	}
	outcomes := []string{engine.OutcomeWin, engine.OutcomeLose, engine.OutcomePush}
	return engine.NewIntent(engine.IntentMinigameResult, map[string]any{
		"player":  stake.PlayerID,
		"outcome": outcomes[b.rng.Intn(len(outcomes))],
		"amount":  stake.Wager,
	})
}

func (b *Bot) bid(w *engine.WorldState, a *engine.Auction) engine.Intent {
	if len(a.Bidders) > 0 {
		bidder := w.Player(a.Bidders[b.rng.Intn(len(a.Bidders))])
		step := 10 + b.rng.Intn(40)
		roll := b.rng.Float64()
		switch {
		case bidder != nil && roll < 0.3 && bidder.Money > a.HighBid+step:
			return engine.NewIntent(engine.IntentPlaceBid, map[string]any{"player": bidder.ID, "amount": a.HighBid + step})
		case bidder != nil && roll < 0.4:
			return engine.NewIntent(engine.IntentWithdrawBid, map[string]any{"player": bidder.ID})
		}
	}
	return engine.NewIntent(engine.IntentAuctionTick, nil)
}

func (b *Bot) answer(t *engine.TradeProposal) engine.Intent {
	if b.rng.Float64() < 0.5 {
		return engine.NewIntent(engine.IntentAcceptTrade, map[string]any{"player": t.To})
	}
	return engine.NewIntent(engine.IntentRejectTrade, map[string]any{"player": t.To})
}

func (b *Bot) vote(w *engine.WorldState, e *engine.Election) engine.Intent {
	var ballot []string
	for r := range e.Tally {
		ballot = append(ballot, string(r))
	}
	sort.Strings(ballot)

	for _, p := range w.Players {
		if !p.Alive || contains(e.Voted, p.ID) || len(ballot) == 0 {
			continue
		}
		return engine.NewIntent(engine.IntentCastVote, map[string]any{
			"player": p.ID,
			"regime": ballot[b.rng.Intn(len(ballot))],
		})
	}
	return engine.NewIntent(engine.IntentCloseElection, nil)
}

// manage spends the start of a turn on property, shares or abilities
func (b *Bot) manage(w *engine.WorldState, p *engine.Player) engine.Intent {
	tile := -1
	if len(p.Owned) > 0 {
		tile = p.Owned[b.rng.Intn(len(p.Owned))]
	}
	switch b.rng.Intn(5) {
	case 0:
		if tile >= 0 {
			return engine.NewIntent(engine.IntentBuildHouse, map[string]any{"player": p.ID, "tile": tile})
		}
	case 1:
		if tile >= 0 && w.Tile(tile).Mortgaged {
			return engine.NewIntent(engine.IntentUnmortgage, map[string]any{"player": p.ID, "tile": tile})
		}
	case 2:
		if len(w.Companies) > 0 {
			c := w.Companies[b.rng.Intn(len(w.Companies))]
			return engine.NewIntent(engine.IntentBuyShares, map[string]any{"player": p.ID, "company": c.ID, "count": 1})
		}
	case 3:
		if tile >= 0 {
			return engine.NewIntent(engine.IntentStartAuction, map[string]any{"player": p.ID, "tile": tile, "sealed": b.rng.Intn(2) == 0})
		}
	case 4:
		if p.Money > 100 {
			return engine.NewIntent(engine.IntentDepositOffshore, map[string]any{"player": p.ID, "amount": 50})
		}
	}
	return engine.NewIntent(engine.IntentRollDice, map[string]any{"player": p.ID})
}

func (b *Bot) proposeTrade(w *engine.WorldState, p *engine.Player) (engine.Intent, bool) {
	var others []string
	for _, o := range w.Players {
		if o.Alive && o.ID != p.ID {
			others = append(others, o.ID)
		}
	}
	if len(others) == 0 || p.Money < 20 {
		return engine.Intent{}, false
	}
	payload := map[string]any{
		"player":     p.ID,
		"to":         others[b.rng.Intn(len(others))],
		"give_money": 1 + b.rng.Intn(p.Money/2),
	}
	if len(p.Owned) > 0 && b.rng.Intn(2) == 0 {
		payload["give_tiles"] = []int{p.Owned[b.rng.Intn(len(p.Owned))]}
	}
	return engine.NewIntent(engine.IntentProposeTrade, payload), true
}

// random builds an arbitrary intent with plausible payload values
func (b *Bot) random(w *engine.WorldState) engine.Intent {
	payload := map[string]any{
		"amount": b.rng.Intn(400),
		"count":  1 + b.rng.Intn(3),
		"steps":  b.rng.Intn(12),
		"strike": b.rng.Intn(300),
		"turns":  1 + b.rng.Intn(5),
		"sealed": b.rng.Intn(2) == 0,
	}
	if len(w.Players) > 0 {
		payload["player"] = w.Players[b.rng.Intn(len(w.Players))].ID
		payload["to"] = w.Players[b.rng.Intn(len(w.Players))].ID
		payload["dealer"] = w.Players[b.rng.Intn(len(w.Players))].ID
	}
	if len(w.Tiles) > 0 {
		payload["tile"] = b.rng.Intn(len(w.Tiles))
	}
	if len(w.Companies) > 0 {
		payload["company"] = w.Companies[b.rng.Intn(len(w.Companies))].ID
	}
	if len(w.Options) > 0 {
		payload["option"] = w.Options[b.rng.Intn(len(w.Options))].ID
	}
	payload["regime"] = string(engine.AllRegimes[b.rng.Intn(len(engine.AllRegimes))])
	return engine.NewIntent(catalogue[b.rng.Intn(len(catalogue))], payload)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
