package engine

import "fmt"

// Tuning holds every tunable constant of the rules. The probabilities are
// observed defaults, not invariants; board configs and YAML overlays may change them.
type Tuning struct {
	GoPayout          int `json:"go_payout" yaml:"go_payout"`
	RegimeTermTurns   int `json:"regime_term_turns" yaml:"regime_term_turns"`
	ElectionTermTurns int `json:"election_term_turns" yaml:"election_term_turns"`
	JailTurns         int `json:"jail_turns" yaml:"jail_turns"`
	JailBail          int `json:"jail_bail" yaml:"jail_bail"`
	BankHouses        int `json:"bank_houses" yaml:"bank_houses"`
	BankHotels        int `json:"bank_hotels" yaml:"bank_hotels"`

	// Economy
	UnmortgageInterestPct int `json:"unmortgage_interest_pct" yaml:"unmortgage_interest_pct"`
	RepairCost            int `json:"repair_cost" yaml:"repair_cost"`
	MinCostFloorPct       int `json:"min_cost_floor_pct" yaml:"min_cost_floor_pct"`
	ShortageSurchargePct  int `json:"shortage_surcharge_pct" yaml:"shortage_surcharge_pct"`
	HouseResalePct        int `json:"house_resale_pct" yaml:"house_resale_pct"`
	StateBuybackPct       int `json:"state_buyback_pct" yaml:"state_buyback_pct"`
	DeclineStateBidPct    int `json:"decline_state_bid_pct" yaml:"decline_state_bid_pct"`
	PovertyLine           int `json:"poverty_line" yaml:"poverty_line"`

	// Auctions
	AuctionTicks    int `json:"auction_ticks" yaml:"auction_ticks"`
	BidRefreshTicks int `json:"bid_refresh_ticks" yaml:"bid_refresh_ticks"`

	// Movement
	RerouteChance float64 `json:"reroute_chance" yaml:"reroute_chance"`
	WeatherChance float64 `json:"weather_chance" yaml:"weather_chance"`

	// Roles and side economy
	SquatterClaim       int `json:"squatter_claim" yaml:"squatter_claim"`
	EvictionTurns       int `json:"eviction_turns" yaml:"eviction_turns"`
	SabotageCooldown    int `json:"sabotage_cooldown" yaml:"sabotage_cooldown"`
	CorruptionCooldown  int `json:"corruption_cooldown" yaml:"corruption_cooldown"`
	DealerStartingStock int `json:"dealer_starting_stock" yaml:"dealer_starting_stock"`
	ContrabandPrice     int `json:"contraband_price" yaml:"contraband_price"`
	AddictionThreshold  int `json:"addiction_threshold" yaml:"addiction_threshold"`
	WithdrawalCost      int `json:"withdrawal_cost" yaml:"withdrawal_cost"`
	OptionTurns         int `json:"option_turns" yaml:"option_turns"`

	// Government effects
	ElectionChance      float64 `json:"election_chance" yaml:"election_chance"`
	WealthTaxThreshold  int     `json:"wealth_tax_threshold" yaml:"wealth_tax_threshold"`
	WealthTaxPct        int     `json:"wealth_tax_pct" yaml:"wealth_tax_pct"`
	ExpropriationChance float64 `json:"expropriation_chance" yaml:"expropriation_chance"`
	DemolitionChance    float64 `json:"demolition_chance" yaml:"demolition_chance"`
	NarcoticsChance     float64 `json:"narcotics_chance" yaml:"narcotics_chance"`
	SeizureChance       float64 `json:"seizure_chance" yaml:"seizure_chance"`
	PrivatizationChance float64 `json:"privatization_chance" yaml:"privatization_chance"`
	DisasterChance      float64 `json:"disaster_chance" yaml:"disaster_chance"`
	PrintThreshold      int     `json:"print_threshold" yaml:"print_threshold"`
	PrintAmount         int     `json:"print_amount" yaml:"print_amount"`
	ForcedLaborLevy     int     `json:"forced_labor_levy" yaml:"forced_labor_levy"`
}

// DefaultTuning returns the built-in constants
func DefaultTuning() Tuning {
	return Tuning{
		GoPayout:          200,
		RegimeTermTurns:   8,
		ElectionTermTurns: 10,
		JailTurns:         3,
		JailBail:          50,
		BankHouses:        32,
		BankHotels:        12,

		UnmortgageInterestPct: 10,
		RepairCost:            50,
		MinCostFloorPct:       50,
		ShortageSurchargePct:  150,
		HouseResalePct:        50,
		StateBuybackPct:       50,
		DeclineStateBidPct:    50,
		PovertyLine:           300,

		AuctionTicks:    30,
		BidRefreshTicks: 10,

		RerouteChance: 0.25,
		WeatherChance: 0.15,

		SquatterClaim:       25,
		EvictionTurns:       3,
		SabotageCooldown:    3,
		CorruptionCooldown:  4,
		DealerStartingStock: 3,
		ContrabandPrice:     40,
		AddictionThreshold:  3,
		WithdrawalCost:      30,
		OptionTurns:         12,

		ElectionChance:      0.5,
		WealthTaxThreshold:  2000,
		WealthTaxPct:        10,
		ExpropriationChance: 0.10,
		DemolitionChance:    0.08,
		NarcoticsChance:     0.20,
		SeizureChance:       0.05,
		PrivatizationChance: 0.25,
		DisasterChance:      0.01,
		PrintThreshold:      500,
		PrintAmount:         2000,
		ForcedLaborLevy:     50,
	}
}

// Validate checks the tuning values for sanity
func (t Tuning) Validate() error {
	if t.RegimeTermTurns <= 0 || t.ElectionTermTurns <= 0 {
		return fmt.Errorf("tuning: regime and election terms must be positive")
	}
	if t.AuctionTicks <= 0 || t.BidRefreshTicks <= 0 {
		return fmt.Errorf("tuning: auction timers must be positive")
	}
	if t.JailTurns < 0 || t.GoPayout < 0 || t.JailBail < 0 {
		return fmt.Errorf("tuning: jail and payout values must not be negative")
	}
	probs := map[string]float64{
		"reroute_chance":       t.RerouteChance,
		"weather_chance":       t.WeatherChance,
		"election_chance":      t.ElectionChance,
		"expropriation_chance": t.ExpropriationChance,
		"demolition_chance":    t.DemolitionChance,
		"narcotics_chance":     t.NarcoticsChance,
		"seizure_chance":       t.SeizureChance,
		"privatization_chance": t.PrivatizationChance,
		"disaster_chance":      t.DisasterChance,
	}
	for name, p := range probs {
		if p < 0 || p > 1 {
			return fmt.Errorf("tuning: %s must be between 0 and 1, got %v", name, p)
		}
	}
	return nil
}
