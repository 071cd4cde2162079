package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultGameConfigIsValid(t *testing.T) {
	config := DefaultGameConfig()
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("Expected the classic board to validate, got %v", err)
	}
	if len(config.Board) != 40 {
		t.Errorf("Expected 40 tiles, got %d", len(config.Board))
	}
}

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *GameConfig)
		want   string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"no money", func(c *GameConfig) { c.StartingMoney = 0 }, "starting_money"},
		{"negative treasury", func(c *GameConfig) { c.StartingTreasury = -1 }, "starting_treasury"},
		{"unknown regime", func(c *GameConfig) { c.StartingRegime = "monarchy" }, "starting_regime"},
		{"tiny board", func(c *GameConfig) { c.Board = c.Board[:5] }, "board must have"},
		{"start not first", func(c *GameConfig) { c.Board[0], c.Board[1] = c.Board[1], c.Board[0] }, "tile 0 must be the start"},
		{"second start", func(c *GameConfig) { c.Board[2] = TileSpec{Name: "Again", Type: TileStart} }, "start tile must be unique"},
		{"short rent table", func(c *GameConfig) { c.Board[1].Rent = []int{2, 10} }, "rent levels"},
		{"lonely group", func(c *GameConfig) { c.Board[1].Group = "solo" }, "single property"},
		{"free property", func(c *GameConfig) { c.Board[5].Price = 0 }, "positive price"},
		{"unknown tile type", func(c *GameConfig) { c.Board[2].Type = "volcano" }, "unknown type"},
		{"jail missing", func(c *GameConfig) { c.Board[10].Type = TilePark }, "no jail"},
		{"reserved company", func(c *GameConfig) { c.Companies[0].ID = StateID }, "reserved"},
		{"duplicate company", func(c *GameConfig) { c.Companies[1].ID = c.Companies[0].ID }, "duplicate company"},
		{"bad chance", func(c *GameConfig) { c.Tuning.ElectionChance = 1.5 }, "election_chance"},
		{"zero auction timer", func(c *GameConfig) { c.Tuning.AuctionTicks = 0 }, "auction timers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultGameConfig()
			tt.mutate(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}

	if err := ValidateGameConfig(nil); err == nil {
		t.Error("Expected a nil config to be rejected")
	}
}

func TestValidatePlayers(t *testing.T) {
	tests := []struct {
		name    string
		players []PlayerSpec
		ok      bool
	}{
		{"two citizens", testPlayers("ana", "ben"), true},
		{"alone", testPlayers("ana"), false},
		{"duplicate", testPlayers("ana", "ana"), false},
		{"state seat", testPlayers("ana", StateID), false},
		{"bad role", []PlayerSpec{{ID: "ana", Role: "pirate"}, {ID: "ben"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlayers(tt.players)
			if (err == nil) != tt.ok {
				t.Errorf("Expected ok=%v, got %v", tt.ok, err)
			}
		})
	}
}

const quickBoard = `{
  "name": "pocket",
  "starting_money": 800,
  "starting_treasury": 5000,
  "board": [
    {"name": "Start", "type": "start"},
    {"name": "A1", "type": "property", "group": "a", "price": 60, "house_cost": 50, "rent": [2, 10, 30, 90, 160, 250]},
    {"name": "A2", "type": "property", "group": "a", "price": 60, "house_cost": 50, "rent": [4, 20, 60, 180, 320, 450]},
    {"name": "Station", "type": "transit", "price": 200, "rent": [25]},
    {"name": "Jail", "type": "jail"},
    {"name": "B1", "type": "property", "group": "b", "price": 100, "house_cost": 50, "rent": [6, 30, 90, 270, 400, 550]},
    {"name": "B2", "type": "property", "group": "b", "price": 120, "house_cost": 50, "rent": [8, 40, 100, 300, 450, 600]},
    {"name": "Tax", "type": "tax", "tax_amount": 50},
    {"name": "Casino", "type": "casino"},
    {"name": "Park", "type": "park"},
    {"name": "Bulletin", "type": "event"},
    {"name": "Go To Jail", "type": "go_to_jail"}
  ],
  "tuning": {"auction_ticks": 12, "election_chance": 1}
}`

func TestParseGameConfig_TuningOverlay(t *testing.T) {
	config, err := ParseGameConfig([]byte(quickBoard))
	if err != nil {
		t.Fatalf("Expected the pocket board to parse, got %v", err)
	}
	defaults := DefaultTuning()
	if config.Tuning.AuctionTicks != 12 || config.Tuning.ElectionChance != 1 {
		t.Errorf("Expected overridden tuning, got %d and %v", config.Tuning.AuctionTicks, config.Tuning.ElectionChance)
	}
	if config.Tuning.GoPayout != defaults.GoPayout || config.Tuning.BidRefreshTicks != defaults.BidRefreshTicks {
		t.Errorf("Expected omitted tuning keys to keep defaults, got %+v", config.Tuning)
	}

	w := InitGameStateFromConfig(config, testPlayers("ana", "ben"))
	if TotalMoney(w) != 6600 || w.InitialMoney != 6600 {
		t.Errorf("Expected 6600 in circulation, got %d", TotalMoney(w))
	}
	if w.Regime != Democracy || w.Phase != PhaseSetup {
		t.Errorf("Expected a democracy in setup, got %s in %s", w.Regime, w.Phase)
	}

	if _, err := ParseGameConfig([]byte(`{"name": `)); err == nil {
		t.Error("Expected malformed JSON to fail")
	}
}

func TestLoadGameConfig_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pocket.json"), []byte(quickBoard), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadGameConfig("configs/pocket.json")
	if err != nil {
		t.Fatalf("Expected CONFIG_DIR to resolve the board, got %v", err)
	}
	if config.Name != "pocket" || len(config.Board) != 12 {
		t.Errorf("Expected the pocket board, got %s with %d tiles", config.Name, len(config.Board))
	}

	if _, err := LoadGameConfig("configs/missing.json"); err == nil {
		t.Error("Expected a missing file to fail")
	}
}
