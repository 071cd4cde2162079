package engine

import "sort"

// effect is one regime rule applied once per government cycle
type effect struct {
	Name  string
	Apply func(w *WorldState, env Env)
}

// regimeEffects is the rule bundle of each regime, applied in order
var regimeEffects = map[Regime][]effect{
	Democracy: {
		{Name: "eviction", Apply: evictSquatters},
		{Name: "offshore interest", Apply: offshoreInterest},
	},
	Socialism: {
		{Name: "wealth tax", Apply: wealthTax},
		{Name: "expropriation", Apply: expropriation},
		{Name: "money printing", Apply: moneyPrinting},
	},
	Oligarchy: {
		{Name: "offshore interest", Apply: offshoreInterest},
		{Name: "privatization", Apply: privatization},
	},
	Dictatorship: {
		{Name: "seizure", Apply: seizure},
		{Name: "forced labor", Apply: forcedLabor},
		{Name: "demolition", Apply: demolition},
	},
	Anarchy: {
		{Name: "narcotics", Apply: narcotics},
	},
}

// runGovernmentCycle is the end-of-turn policy tick
func runGovernmentCycle(w *WorldState, env Env) {
	decayCounters(w, env)

	if w.Election == nil {
		w.RegimeTurnsLeft--
	}
	for _, eff := range regimeEffects[w.Regime] {
		eff.Apply(w, env)
	}
	payWelfare(w, env)
	globalDisaster(w, env)
	payStipend(w)
	rollWeather(w, env)

	if w.Election == nil && w.RegimeTurnsLeft <= 0 {
		if chance(env.Rand, env.Tuning.ElectionChance) {
			openElection(w)
		} else {
			succeed(w, env)
		}
	}

	if w.Treasury < 0 {
		deficit := -w.Treasury
		w.Treasury = 0
		w.Minted += deficit
		w.Regime = collapseRegime()
		w.RegimeTurnsLeft = env.Tuning.RegimeTermTurns
		w.Election = nil
		w.logf(LogRegime, "The treasury collapsed %d in deficit; %s takes over", deficit, w.Regime)
	}
}

// decayCounters ages every per-turn counter
func decayCounters(w *WorldState, env Env) {
	for i := range w.Tiles {
		t := &w.Tiles[i]
		if t.BlockedRentTurns > 0 {
			t.BlockedRentTurns--
		}
		if t.OccupiedBy != "" {
			t.EvictionTimer--
			if t.EvictionTimer <= 0 {
				w.logf(LogInfo, "The occupation of %s has ended", t.Name)
				t.OccupiedBy = ""
				t.EvictionTimer = 0
			}
		}
	}
	for i := range w.Players {
		p := &w.Players[i]
		for key, turns := range p.Cooldowns {
			if turns <= 1 {
				delete(p.Cooldowns, key)
			} else {
				p.Cooldowns[key] = turns - 1
			}
		}
	}

	live := w.Options[:0]
	for _, o := range w.Options {
		o.TurnsLeft--
		if o.TurnsLeft <= 0 {
			w.logf(LogInfo, "Option %s on %s expired", o.ID, w.Tiles[o.TileID].Name)
			continue
		}
		live = append(live, o)
	}
	w.Options = live

	if cur := w.Current(); cur != nil && cur.Alive && cur.Addiction >= env.Tuning.AddictionThreshold && cur.Contraband == 0 {
		cur.Addiction--
		if w.pay(cur.ID, StateID, env.Tuning.WithdrawalCost) {
			w.logf(LogMoney, "%s pays %d for withdrawal treatment", cur.Name, env.Tuning.WithdrawalCost)
		} else {
			cur.SkipTurns++
			w.logf(LogInfo, "%s suffers withdrawal and will skip a turn", cur.Name)
		}
	}
}

func evictSquatters(w *WorldState, env Env) {
	for i := range w.Tiles {
		t := &w.Tiles[i]
		if t.OccupiedBy != "" {
			w.logf(LogPolicy, "Squatters evicted from %s", t.Name)
			t.OccupiedBy = ""
			t.EvictionTimer = 0
		}
	}
}

// wealthTax takes a share of every balance above the threshold
func wealthTax(w *WorldState, env Env) {
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive || p.Money <= env.Tuning.WealthTaxThreshold {
			continue
		}
		tax := (p.Money - env.Tuning.WealthTaxThreshold) * env.Tuning.WealthTaxPct / 100
		if tax <= 0 {
			continue
		}
		w.pay(p.ID, StateID, tax)
		w.logf(LogPolicy, "Wealth tax: %s pays %d", p.Name, tax)
	}
}

// expropriation nationalizes undeveloped complete groups, each on its own roll
func expropriation(w *WorldState, env Env) {
	full := w.fullGroups()
	for _, group := range w.groupOrder() {
		owner, ok := full[group]
		if !ok || w.groupDeveloped(group) {
			continue
		}
		if !chance(env.Rand, env.Tuning.ExpropriationChance) {
			continue
		}
		for _, id := range w.groupTiles(group) {
			w.seizeTile(id)
		}
		w.logf(LogPolicy, "The %s group of %s is expropriated", group, w.nameOf(owner))
	}
}

func moneyPrinting(w *WorldState, env Env) {
	if w.Treasury < env.Tuning.PrintThreshold {
		w.mint(env.Tuning.PrintAmount, "the presses run under "+string(w.Regime))
	}
}

// offshoreInterest accrues the regime rate on offshore balances, paid by the
// treasury even when that drives it negative
func offshoreInterest(w *WorldState, env Env) {
	rate := ConfigFor(w.Regime).InterestRate
	if rate <= 0 {
		return
	}
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive || p.Offshore <= 0 {
			continue
		}
		interest := p.Offshore * rate / 100
		if interest <= 0 {
			continue
		}
		p.Offshore += interest
		w.Treasury -= interest
		w.logf(LogMoney, "%s earns %d offshore interest", p.Name, interest)
	}
}

// privatization puts one random state tile up for auction
func privatization(w *WorldState, env Env) {
	if w.Auction != nil || !chance(env.Rand, env.Tuning.PrivatizationChance) {
		return
	}
	var candidates []int
	for i := range w.Tiles {
		if w.Tiles[i].Owner.Kind == OwnerState {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}
	id := candidates[env.Rand.Intn(len(candidates))]
	w.logf(LogPolicy, "%s is privatized", w.Tiles[id].Name)
	w.openAuction(&Auction{Kind: AuctionTile, TileIDs: []int{id}}, env)
}

// seizure confiscates one random undeveloped player tile
func seizure(w *WorldState, env Env) {
	if !chance(env.Rand, env.Tuning.SeizureChance) {
		return
	}
	var candidates []int
	for i := range w.Tiles {
		t := &w.Tiles[i]
		if t.Owner.Kind == OwnerPlayer && !t.Developed() && !w.underAuction(i) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}
	id := candidates[env.Rand.Intn(len(candidates))]
	owner := w.Tiles[id].Owner.PlayerID
	w.seizeTile(id)
	w.logf(LogPolicy, "The state seizes %s from %s", w.Tiles[id].Name, w.nameOf(owner))
}

func forcedLabor(w *WorldState, env Env) {
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive || p.JailTurns == 0 {
			continue
		}
		if w.pay(p.ID, StateID, env.Tuning.ForcedLaborLevy) {
			w.logf(LogPolicy, "%s pays a %d forced-labor levy", p.Name, env.Tuning.ForcedLaborLevy)
		}
	}
}

// demolition razes one random developed tile, returning its buildings to the bank
func demolition(w *WorldState, env Env) {
	if !chance(env.Rand, env.Tuning.DemolitionChance) {
		return
	}
	var candidates []int
	for i := range w.Tiles {
		if w.Tiles[i].Developed() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}
	t := &w.Tiles[candidates[env.Rand.Intn(len(candidates))]]
	w.clearBuildings(t)
	w.logf(LogPolicy, "Buildings on %s are demolished", t.Name)
}

// narcotics rewards completed monopolies with contraband, each on its own roll
func narcotics(w *WorldState, env Env) {
	full := w.fullGroups()
	for _, group := range w.groupOrder() {
		owner, ok := full[group]
		if !ok || !chance(env.Rand, env.Tuning.NarcoticsChance) {
			continue
		}
		if p := w.Player(owner); p != nil && p.Alive {
			p.Contraband++
			w.logf(LogPolicy, "Something grows in the %s district", group)
		}
	}
}

func payWelfare(w *WorldState, env Env) {
	rate := ConfigFor(w.Regime).WelfareRate
	if rate <= 0 {
		return
	}
	benefit := env.Tuning.PovertyLine * rate / 100
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive || p.Money >= env.Tuning.PovertyLine {
			continue
		}
		if w.pay(StateID, p.ID, benefit) {
			w.logf(LogPolicy, "%s receives %d in welfare", p.Name, benefit)
		}
	}
}

func globalDisaster(w *WorldState, env Env) {
	if !chance(env.Rand, env.Tuning.DisasterChance) {
		return
	}
	razed := 0
	for i := range w.Tiles {
		if w.Tiles[i].Developed() {
			w.clearBuildings(&w.Tiles[i])
			razed++
		}
	}
	w.logf(LogPolicy, "A disaster strikes: %d developed tiles are flattened", razed)
}

// payStipend pays or levies eligible living human players when affordable
func payStipend(w *WorldState) {
	cfg := ConfigFor(w.Regime)
	if cfg.Stipend == 0 {
		return
	}
	for i := range w.Players {
		p := &w.Players[i]
		if !p.Alive || p.IsBot || (cfg.StipendGender != "" && p.Gender != cfg.StipendGender) {
			continue
		}
		if cfg.Stipend > 0 {
			if w.pay(StateID, p.ID, cfg.Stipend) {
				w.logf(LogPolicy, "%s receives a %d stipend", p.Name, cfg.Stipend)
			}
		} else if w.pay(p.ID, StateID, -cfg.Stipend) {
			w.logf(LogPolicy, "%s pays a %d levy", p.Name, -cfg.Stipend)
		}
	}
}

func rollWeather(w *WorldState, env Env) {
	prev := w.Weather
	if chance(env.Rand, env.Tuning.WeatherChance) {
		w.Weather = AllWeather[1+env.Rand.Intn(len(AllWeather)-1)]
	} else {
		w.Weather = WeatherClear
	}
	if w.Weather != prev {
		w.logf(LogInfo, "Weather turns to %s", w.Weather)
	}
}

// succeed installs a random different regime without a vote
func succeed(w *WorldState, env Env) {
	var candidates []Regime
	for _, r := range AllRegimes {
		if r != w.Regime {
			candidates = append(candidates, r)
		}
	}
	prev := w.Regime
	w.Regime = candidates[env.Rand.Intn(len(candidates))]
	w.RegimeTurnsLeft = env.Tuning.RegimeTermTurns
	w.logf(LogRegime, "%s falls; %s takes power", prev, w.Regime)
}

// seizeTile hands a tile to the state, clearing its encumbrances
func (w *WorldState) seizeTile(id int) {
	t := &w.Tiles[id]
	w.resetTile(t)
	w.voidOptionsOn(id)
	w.setOwner(id, stateOwner)
}

func (w *WorldState) underAuction(id int) bool {
	return w.Auction != nil && containsInt(w.Auction.TileIDs, id)
}

// RegimeRoster lists the regimes and their configuration in canonical order
func RegimeRoster() []RegimeConfigEntry {
	out := make([]RegimeConfigEntry, 0, len(AllRegimes))
	for _, r := range AllRegimes {
		out = append(out, RegimeConfigEntry{Regime: r, Config: ConfigFor(r), Effects: effectNames(r)})
	}
	return out
}

// RegimeConfigEntry pairs a regime with its configuration and effect bundle
type RegimeConfigEntry struct {
	Regime  Regime       `json:"regime"`
	Config  RegimeConfig `json:"config"`
	Effects []string     `json:"effects"`
}

func effectNames(r Regime) []string {
	var names []string
	for _, e := range regimeEffects[r] {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
