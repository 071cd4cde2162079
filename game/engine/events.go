package engine

// eventCard is one drawable bulletin. Apply runs inside landing resolution and
// may move the token, in which case the new tile is resolved at depth+1.
type eventCard struct {
	Name  string
	Apply func(w *WorldState, p *Player, env Env, depth int)
}

// eventDeck is filled in init because its cards recurse into landing resolution
var eventDeck []eventCard

func init() {
	eventDeck = []eventCard{
		{Name: "Stimulus check", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			if w.pay(StateID, p.ID, 100) {
				w.logf(LogMoney, "%s receives a 100 stimulus check", p.Name)
				return
			}
			w.logf(LogInfo, "The stimulus for %s bounced; the treasury is empty", p.Name)
		}},
		{Name: "Tax audit", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			w.charge(p.ID, StateID, 75, 0, 0, "a tax audit")
		}},
		{Name: "Detour", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			n := len(w.Tiles)
			w.teleport(p, (p.Position-3+n)%n)
			if depth < MaxRerouteHops {
				w.resolveLanding(p, env, depth+1)
			}
		}},
		{Name: "Fast lane", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			w.teleport(p, 0)
			w.payFromTreasury(p.ID, env.Tuning.GoPayout, "start payout")
			w.logf(LogMoney, "%s collects %d at %s", p.Name, env.Tuning.GoPayout, w.Tiles[0].Name)
		}},
		{Name: "Arrest warrant", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			if ConfigFor(w.Regime).JailNullified {
				w.logf(LogPolicy, "The warrant for %s is ignored under %s", p.Name, w.Regime)
				return
			}
			w.sendToJail(p, env)
		}},
		{Name: "General strike", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			p.SkipTurns++
			w.logf(LogInfo, "%s joins a strike and will skip a turn", p.Name)
		}},
		{Name: "Shipment", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			p.Contraband += 2
			w.logf(LogInfo, "%s picks up an unmarked shipment", p.Name)
		}},
		{Name: "Espresso", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			p.Boosted++
			w.logf(LogInfo, "%s will roll an extra die next turn", p.Name)
		}},
		{Name: "Inheritance", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			if w.pay(StateID, p.ID, 50) {
				w.logf(LogMoney, "%s inherits 50", p.Name)
			}
		}},
		{Name: "Street repairs", Apply: func(w *WorldState, p *Player, env Env, depth int) {
			cost := 0
			for _, id := range p.Owned {
				t := &w.Tiles[id]
				cost += 25 * t.Houses
				if t.Hotel {
					cost += 25 * 5
				}
			}
			if cost == 0 {
				w.logf(LogInfo, "%s has no buildings to repair", p.Name)
				return
			}
			w.charge(p.ID, StateID, cost, 0, 0, "street repairs")
		}},
	}
}

func drawEvent(w *WorldState, p *Player, env Env, depth int) {
	card := eventDeck[env.Rand.Intn(len(eventDeck))]
	w.logf(LogInfo, "%s draws %q", p.Name, card.Name)
	card.Apply(w, p, env, depth)
}
