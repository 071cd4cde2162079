package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig is wrapped by every config validation failure
var ErrInvalidConfig = errors.New("invalid game config")

// TileSpec is the static description of one board tile
type TileSpec struct {
	Name      string   `json:"name"`
	Type      TileType `json:"type"`
	Price     int      `json:"price,omitempty"`
	Group     string   `json:"group,omitempty"`
	Rent      []int    `json:"rent,omitempty"`
	HouseCost int      `json:"house_cost,omitempty"`
	TaxAmount int      `json:"tax_amount,omitempty"`
	Reroute   bool     `json:"reroute,omitempty"`
	Welfare   bool     `json:"welfare,omitempty"`
}

// CompanySpec describes a share-issuing company
type CompanySpec struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SharePrice  int    `json:"share_price"`
	TotalShares int    `json:"total_shares"`
}

// GameConfig is a board configuration loaded from JSON
type GameConfig struct {
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	StartingMoney    int           `json:"starting_money"`
	StartingTreasury int           `json:"starting_treasury"`
	StartingRegime   Regime        `json:"starting_regime,omitempty"`
	Seed             uint64        `json:"seed,omitempty"`
	Board            []TileSpec    `json:"board"`
	Companies        []CompanySpec `json:"companies,omitempty"`
	Tuning           Tuning        `json:"tuning"`
}

// PlayerSpec describes a seat at game creation
type PlayerSpec struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsBot  bool   `json:"is_bot,omitempty"`
	Gender string `json:"gender,omitempty"`
	// Role is optional; START_GAME deals roles to seats without one
	Role Role `json:"role,omitempty"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return invalid("config is nil")
	}
	if config.Name == "" {
		return invalid("name is required")
	}
	if config.StartingMoney <= 0 {
		return invalid("starting_money must be positive, got %d", config.StartingMoney)
	}
	if config.StartingTreasury < 0 {
		return invalid("starting_treasury must not be negative, got %d", config.StartingTreasury)
	}
	if config.StartingRegime != "" && !config.StartingRegime.Valid() {
		return invalid("unknown starting_regime %q", config.StartingRegime)
	}

	n := len(config.Board)
	if n < MinBoardSize || n > MaxBoardSize {
		return invalid("board must have between %d and %d tiles, got %d", MinBoardSize, MaxBoardSize, n)
	}
	if config.Board[0].Type != TileStart {
		return invalid("tile 0 must be the start tile, got %q", config.Board[0].Type)
	}

	hasJail, hasGoToJail := false, false
	groups := map[string]int{}
	for i, tile := range config.Board {
		if tile.Name == "" {
			return invalid("tile %d has no name", i)
		}
		switch tile.Type {
		case TileProperty:
			if tile.Group == "" {
				return invalid("property %d (%s) needs a group", i, tile.Name)
			}
			if len(tile.Rent) != RentLevels {
				return invalid("property %d (%s) needs %d rent levels, got %d", i, tile.Name, RentLevels, len(tile.Rent))
			}
			if tile.HouseCost <= 0 {
				return invalid("property %d (%s) needs a positive house_cost", i, tile.Name)
			}
			groups[tile.Group]++
		case TileTransit:
			if len(tile.Rent) < 1 {
				return invalid("transit %d (%s) needs a base rent", i, tile.Name)
			}
		case TileUtility:
			if len(tile.Rent) < 2 {
				return invalid("utility %d (%s) needs two dice multipliers", i, tile.Name)
			}
		case TileTax:
			if tile.TaxAmount < 0 {
				return invalid("tax %d (%s) has a negative amount", i, tile.Name)
			}
		case TileJail:
			hasJail = true
		case TileGoToJail:
			hasGoToJail = true
		case TileStart:
			if i != 0 {
				return invalid("start tile must be unique and at position 0, found one at %d", i)
			}
		case TileEvent, TileCasino, TileSlots, TilePark:
		default:
			return invalid("tile %d (%s) has unknown type %q", i, tile.Name, tile.Type)
		}
		if tile.Type.Purchasable() && tile.Price <= 0 {
			return invalid("tile %d (%s) must have a positive price", i, tile.Name)
		}
		for _, r := range tile.Rent {
			if r < 0 {
				return invalid("tile %d (%s) has a negative rent", i, tile.Name)
			}
		}
	}
	if hasGoToJail && !hasJail {
		return invalid("board has a go_to_jail tile but no jail")
	}
	for group, count := range groups {
		if count < 2 {
			return invalid("group %q has a single property", group)
		}
	}

	seen := map[string]bool{}
	for _, c := range config.Companies {
		if c.ID == "" || c.ID == StateID {
			return invalid("company id %q is reserved or empty", c.ID)
		}
		if seen[c.ID] {
			return invalid("duplicate company id %q", c.ID)
		}
		seen[c.ID] = true
		if c.SharePrice <= 0 || c.TotalShares <= 0 {
			return invalid("company %s needs a positive share price and share count", c.ID)
		}
	}

	if err := config.Tuning.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ValidatePlayers checks the seats for a new game
func ValidatePlayers(players []PlayerSpec) error {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return invalid("need between %d and %d players, got %d", MinPlayers, MaxPlayers, len(players))
	}
	seen := map[string]bool{}
	for _, p := range players {
		if p.ID == "" || p.ID == StateID {
			return invalid("player id %q is reserved or empty", p.ID)
		}
		if seen[p.ID] {
			return invalid("duplicate player id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Role != "" && !p.Role.Valid() {
			return invalid("player %s has unknown role %q", p.ID, p.Role)
		}
	}
	return nil
}

// ParseGameConfig decodes a JSON config on top of the default tuning, so
// omitted tuning keys keep their defaults
func ParseGameConfig(data []byte) (*GameConfig, error) {
	config := GameConfig{Tuning: DefaultTuning()}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse game config: %w", err)
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" && strings.HasPrefix(filename, "configs/") {
		configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data)
}

// InitGameStateFromConfig builds the pre-game world for the given seats
func InitGameStateFromConfig(config *GameConfig, players []PlayerSpec) *WorldState {
	if config == nil {
		config = DefaultGameConfig()
	}
	regime := config.StartingRegime
	if regime == "" {
		regime = Democracy
	}

	w := &WorldState{
		ConfigName:      config.Name,
		Regime:          regime,
		RegimeTurnsLeft: config.Tuning.RegimeTermTurns,
		Treasury:        config.StartingTreasury,
		Phase:           PhaseSetup,
		Weather:         WeatherClear,
		Bank:            Bank{Houses: config.Tuning.BankHouses, Hotels: config.Tuning.BankHotels},
		Log:             []LogEntry{},
	}

	for i, spec := range config.Board {
		w.Tiles = append(w.Tiles, Tile{
			ID:        i,
			Name:      spec.Name,
			Type:      spec.Type,
			Price:     spec.Price,
			Group:     spec.Group,
			Rent:      append([]int(nil), spec.Rent...),
			HouseCost: spec.HouseCost,
			TaxAmount: spec.TaxAmount,
			Reroute:   spec.Reroute,
			Welfare:   spec.Welfare,
		})
	}

	for _, spec := range players {
		name := spec.Name
		if name == "" {
			name = spec.ID
		}
		w.Players = append(w.Players, Player{
			ID:        spec.ID,
			Name:      name,
			Money:     config.StartingMoney,
			Alive:     true,
			Role:      spec.Role,
			IsBot:     spec.IsBot,
			Gender:    spec.Gender,
			Owned:     []int{},
			Cooldowns: map[string]int{},
			Inventory: map[string]int{},
		})
	}

	for _, c := range config.Companies {
		w.Companies = append(w.Companies, Company{
			ID:          c.ID,
			Name:        c.Name,
			SharePrice:  c.SharePrice,
			TotalShares: c.TotalShares,
			Holders:     map[string]int{StateID: c.TotalShares},
		})
	}

	w.InitialMoney = len(players)*config.StartingMoney + config.StartingTreasury
	w.logf(LogInfo, "Game created on board %s under %s", config.Name, regime)
	return w
}

func property(name, group string, price, houseCost int, rent ...int) TileSpec {
	return TileSpec{Name: name, Type: TileProperty, Group: group, Price: price, HouseCost: houseCost, Rent: rent}
}

func transit(name string) TileSpec {
	return TileSpec{Name: name, Type: TileTransit, Price: 200, Rent: []int{25}}
}

func utility(name string) TileSpec {
	return TileSpec{Name: name, Type: TileUtility, Price: 150, Rent: []int{4, 10}}
}

// DefaultGameConfig returns the built-in classic 40-tile board
func DefaultGameConfig() *GameConfig {
	welfare := func(t TileSpec) TileSpec {
		t.Welfare = true
		return t
	}
	reroute := func(t TileSpec) TileSpec {
		t.Reroute = true
		return t
	}
	event := TileSpec{Name: "Bulletin", Type: TileEvent}

	return &GameConfig{
		Name:             "classic",
		Description:      "The classic 40-tile capital with four transit lines",
		StartingMoney:    1500,
		StartingTreasury: 20000,
		StartingRegime:   Democracy,
		Board: []TileSpec{
			{Name: "Independence Square", Type: TileStart},
			property("Mill Lane", "brown", 60, 50, 2, 10, 30, 90, 160, 250),
			event,
			property("Tannery Row", "brown", 60, 50, 4, 20, 60, 180, 320, 450),
			{Name: "Income Tax", Type: TileTax, TaxAmount: 100},
			transit("North Station"),
			property("Canal Street", "light_blue", 100, 50, 6, 30, 90, 270, 400, 550),
			reroute(TileSpec{Name: "Crossroads", Type: TileEvent}),
			property("Lock Avenue", "light_blue", 100, 50, 6, 30, 90, 270, 400, 550),
			property("Harbor Walk", "light_blue", 120, 50, 8, 40, 100, 300, 450, 600),
			{Name: "Central Jail", Type: TileJail},
			welfare(property("Garden Court", "pink", 140, 100, 10, 50, 150, 450, 625, 750)),
			utility("Power Grid"),
			property("Rose Terrace", "pink", 140, 100, 10, 50, 150, 450, 625, 750),
			property("Orchid Place", "pink", 160, 100, 12, 60, 180, 500, 700, 900),
			transit("East Station"),
			property("Foundry Road", "orange", 180, 100, 14, 70, 200, 550, 750, 950),
			{Name: "Grand Casino", Type: TileCasino},
			property("Smelter Way", "orange", 180, 100, 14, 70, 200, 550, 750, 950),
			property("Anvil Street", "orange", 200, 100, 16, 80, 220, 600, 800, 1000),
			{Name: "People's Park", Type: TilePark},
			property("Assembly Hall", "red", 220, 150, 18, 90, 250, 700, 875, 1050),
			reroute(TileSpec{Name: "Checkpoint", Type: TileEvent}),
			property("Senate Row", "red", 220, 150, 18, 90, 250, 700, 875, 1050),
			welfare(property("Tribune Plaza", "red", 240, 150, 20, 100, 300, 750, 925, 1100)),
			transit("South Station"),
			property("Exchange Street", "yellow", 260, 150, 22, 110, 330, 800, 975, 1150),
			property("Bourse Lane", "yellow", 260, 150, 22, 110, 330, 800, 975, 1150),
			utility("Water Works"),
			property("Treasury Row", "yellow", 280, 150, 24, 120, 360, 850, 1025, 1200),
			{Name: "Go To Jail", Type: TileGoToJail},
			property("Embassy Drive", "green", 300, 200, 26, 130, 390, 900, 1100, 1275),
			property("Consulate Way", "green", 300, 200, 26, 130, 390, 900, 1100, 1275),
			{Name: "Slot Arcade", Type: TileSlots},
			property("Chancellery", "green", 320, 200, 28, 150, 450, 1000, 1200, 1400),
			transit("West Station"),
			event,
			property("Palace Gardens", "dark_blue", 350, 200, 35, 175, 500, 1100, 1300, 1500),
			{Name: "Luxury Tax", Type: TileTax, TaxAmount: 75},
			property("Presidential Mile", "dark_blue", 400, 200, 50, 200, 600, 1400, 1700, 2000),
		},
		Companies: []CompanySpec{
			{ID: "rail", Name: "Rail Co", SharePrice: 50, TotalShares: 20},
			{ID: "grid", Name: "Power Grid", SharePrice: 40, TotalShares: 20},
			{ID: "bank", Name: "City Bank", SharePrice: 80, TotalShares: 10},
		},
		Tuning: DefaultTuning(),
	}
}
