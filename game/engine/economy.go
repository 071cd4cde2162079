package engine

// RentQuote is the itemized rent owed for landing on a tile
type RentQuote struct {
	Base      int    `json:"base"`
	Surcharge int    `json:"surcharge"`
	Exempt    bool   `json:"exempt"`
	Subsidy   int    `json:"subsidy"`
	Reason    string `json:"reason,omitempty"`
}

// Total is what the tenant pays
func (q RentQuote) Total() int {
	if q.Exempt {
		return 0
	}
	return q.Base + q.Surcharge
}

// QuoteRent computes the rent for landing on a tile given the dice total
func QuoteRent(w *WorldState, tileID, diceTotal int) RentQuote {
	t := w.Tile(tileID)
	if t == nil || !t.Type.Purchasable() {
		return RentQuote{Reason: "not a rent tile"}
	}
	switch {
	case t.Owner.Kind == OwnerNone || t.Owner.Kind == OwnerEscrow:
		return RentQuote{Reason: "unowned"}
	case t.Mortgaged:
		return RentQuote{Reason: "mortgaged"}
	case t.Broken:
		return RentQuote{Reason: "broken"}
	case t.BlockedRentTurns > 0:
		return RentQuote{Reason: "rent blocked"}
	}

	base := 0
	switch t.Type {
	case TileProperty:
		switch {
		case t.Hotel:
			base = rentAt(t.Rent, RentLevels-1)
		case t.Houses > 0:
			base = rentAt(t.Rent, t.Houses)
		default:
			base = rentAt(t.Rent, 0)
			if w.ownsFullGroup(t.Owner, t.Group) {
				base *= 2
			}
		}
	case TileTransit:
		n := w.countOwned(t.Owner, TileTransit)
		base = rentAt(t.Rent, 0)
		for i := 1; i < n; i++ {
			base *= 2
		}
	case TileUtility:
		n := w.countOwned(t.Owner, TileUtility)
		idx := n - 1
		if idx > 1 {
			idx = 1
		}
		base = diceTotal * rentAt(t.Rent, idx)
	}

	cfg := ConfigFor(w.Regime)
	if cfg.WelfareExemption && t.Welfare {
		return RentQuote{Base: base, Exempt: true, Subsidy: base, Reason: "welfare exemption"}
	}
	return RentQuote{Base: base, Surcharge: base * cfg.RentSurchargePct / 100}
}

func rentAt(rent []int, i int) int {
	if i < 0 || i >= len(rent) {
		if len(rent) == 0 {
			return 0
		}
		return rent[len(rent)-1]
	}
	return rent[i]
}

// TaxDue is the flat amount of a tax tile plus the regime's share of the player's cash
func TaxDue(w *WorldState, t *Tile, p *Player) int {
	return t.TaxAmount + p.Money*ConfigFor(w.Regime).TaxRate/100
}

// ConstructionCost prices the next building on a tile. When the bank is out of
// inventory the regime either blocks the purchase or charges a shortage surcharge,
// reported by imported.
func ConstructionCost(w *WorldState, t *Tile, role Role, tuning Tuning) (cost int, imported bool, reason string) {
	hotel := t.Houses == MaxHouses
	inStock := w.Bank.Houses > 0
	if hotel {
		inStock = w.Bank.Hotels > 0
	}
	if !inStock {
		if ConfigFor(w.Regime).ShortagePolicy == ShortageBlock {
			return 0, false, "the bank is out of buildings"
		}
		return t.HouseCost * tuning.ShortageSurchargePct / 100, true, ""
	}

	cost = t.HouseCost * ConfigFor(w.Regime).ConstructionPct / 100
	cost = cost * traitsFor(role).ConstructionPct / 100
	if floor := t.HouseCost * tuning.MinCostFloorPct / 100; cost < floor {
		cost = floor
	}
	return cost, false, ""
}

// MortgageValue is what the treasury lends against a tile
func MortgageValue(t *Tile) int {
	return t.Price / 2
}

// UnmortgageCost is the principal plus the lifting interest
func UnmortgageCost(t *Tile, tuning Tuning) int {
	return t.MortgagePrincipal + t.MortgagePrincipal*tuning.UnmortgageInterestPct/100
}
