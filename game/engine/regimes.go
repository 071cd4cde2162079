package engine

// Regime is the active government type
type Regime string

const (
	Democracy    Regime = "democracy"
	Socialism    Regime = "socialism"
	Oligarchy    Regime = "oligarchy"
	Dictatorship Regime = "dictatorship"
	Anarchy      Regime = "anarchy"
)

// AllRegimes lists the regimes in their canonical order
var AllRegimes = []Regime{Democracy, Socialism, Oligarchy, Dictatorship, Anarchy}

// Valid reports whether r is one of the five regimes
func (r Regime) Valid() bool {
	_, ok := regimeConfigs[r]
	return ok
}

// ShortagePolicy decides what happens when the bank runs out of buildings
type ShortagePolicy string

const (
	ShortageBlock     ShortagePolicy = "block"
	ShortageSurcharge ShortagePolicy = "surcharge"
)

// RegimeConfig is the fixed configuration record of a regime
type RegimeConfig struct {
	TaxRate          int `json:"tax_rate"`           // percent of cash added to tax tiles
	WelfareRate      int `json:"welfare_rate"`       // percent of the poverty line paid to poor players each cycle
	InterestRate     int `json:"interest_rate"`      // percent accrued on offshore balances
	RentSurchargePct int `json:"rent_surcharge_pct"` // paid by the tenant to the treasury

	CanTrade         bool           `json:"can_trade"`
	JailNullified    bool           `json:"jail_nullified"`
	OffshoreAllowed  bool           `json:"offshore_allowed"`
	DeclineToState   bool           `json:"decline_to_state"`
	WelfareExemption bool           `json:"welfare_exemption"`
	ConstructionPct  int            `json:"construction_pct"`
	ShortagePolicy   ShortagePolicy `json:"shortage_policy"`
	Stipend          int            `json:"stipend"` // positive pays eligible players, negative levies them
	StipendGender    string         `json:"stipend_gender,omitempty"`
	CollapseFallback bool           `json:"collapse_fallback"`
}

var regimeConfigs = map[Regime]RegimeConfig{
	Democracy: {
		TaxRate: 10, WelfareRate: 20, InterestRate: 2, RentSurchargePct: 0,
		CanTrade: true, OffshoreAllowed: true,
		ConstructionPct: 100, ShortagePolicy: ShortageBlock,
		Stipend: 20,
	},
	Socialism: {
		TaxRate: 20, WelfareRate: 40, InterestRate: 0, RentSurchargePct: 0,
		CanTrade: true, DeclineToState: true, WelfareExemption: true,
		ConstructionPct: 90, ShortagePolicy: ShortageBlock,
	},
	Oligarchy: {
		TaxRate: 5, WelfareRate: 0, InterestRate: 8, RentSurchargePct: 10,
		CanTrade: true, OffshoreAllowed: true,
		ConstructionPct: 80, ShortagePolicy: ShortageSurcharge,
	},
	Dictatorship: {
		TaxRate: 15, WelfareRate: 0, InterestRate: 0, RentSurchargePct: 5,
		ConstructionPct: 120, ShortagePolicy: ShortageBlock,
		Stipend: -15, StipendGender: "male",
	},
	Anarchy: {
		TaxRate: 0, WelfareRate: 0, InterestRate: 0, RentSurchargePct: 0,
		CanTrade: true, JailNullified: true, OffshoreAllowed: true,
		ConstructionPct: 100, ShortagePolicy: ShortageSurcharge,
		CollapseFallback: true,
	},
}

// ConfigFor returns the configuration record of a regime
func ConfigFor(r Regime) RegimeConfig {
	if cfg, ok := regimeConfigs[r]; ok {
		return cfg
	}
	return regimeConfigs[Democracy]
}

// collapseRegime is the least regulated regime, installed when the treasury goes negative
func collapseRegime() Regime {
	for _, r := range AllRegimes {
		if regimeConfigs[r].CollapseFallback {
			return r
		}
	}
	return Anarchy
}
