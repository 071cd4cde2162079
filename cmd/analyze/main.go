// Command analyze prints quick, human-readable economics for every board in
// the configs directory: colour groups with their prices, development costs
// and rent curves, plus warnings for groups no player could afford to build
// out or that never pay back their price.
//
// Usage: analyze [config-dir] (defaults to configs)
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/wricardo/statecraft/game/config"
	"github.com/wricardo/statecraft/game/engine"
)

// GroupAnalysis summarizes one colour group
type GroupAnalysis struct {
	Name       string
	Tiles      int
	Price      int     // to buy every tile
	BuildOut   int     // houses and hotel on every tile
	BaseRent   int     // average undeveloped rent
	HotelRent  int     // average hotel rent
	Payback    float64 // landings to recoup the price at full-group rent
	Affordable bool    // buy plus build-out fits the starting money
}

// BoardAnalysis summarizes one board
type BoardAnalysis struct {
	Name          string
	Tiles         int
	StartingMoney int
	Treasury      int
	GoPayout      int
	TypeCounts    map[engine.TileType]int
	Groups        []GroupAnalysis
	TransitRent   int
	TaxTotal      int
	Companies     int
	Warnings      []string
}

// analyzeBoard computes the summary for one validated board
func analyzeBoard(board *engine.GameConfig) BoardAnalysis {
	a := BoardAnalysis{
		Name:          board.Name,
		Tiles:         len(board.Board),
		StartingMoney: board.StartingMoney,
		Treasury:      board.StartingTreasury,
		GoPayout:      board.Tuning.GoPayout,
		TypeCounts:    map[engine.TileType]int{},
		Companies:     len(board.Companies),
	}

	groups := map[string]*GroupAnalysis{}
	var order []string
	for _, t := range board.Board {
		a.TypeCounts[t.Type]++
		switch t.Type {
		case engine.TileTax:
			a.TaxTotal += t.TaxAmount
		case engine.TileTransit:
			if len(t.Rent) > 0 && t.Rent[0] > a.TransitRent {
				a.TransitRent = t.Rent[0]
			}
		case engine.TileProperty:
			g, ok := groups[t.Group]
			if !ok {
				g = &GroupAnalysis{Name: t.Group}
				groups[t.Group] = g
				order = append(order, t.Group)
			}
			g.Tiles++
			g.Price += t.Price
			g.BuildOut += t.HouseCost * (engine.MaxHouses + 1)
			g.BaseRent += t.Rent[0]
			g.HotelRent += t.Rent[len(t.Rent)-1]
		}
	}

	for _, name := range order {
		g := groups[name]
		g.BaseRent /= g.Tiles
		g.HotelRent /= g.Tiles
		// the owner of a full undeveloped group charges double rent
		if g.BaseRent > 0 {
			g.Payback = float64(g.Price) / float64(g.Tiles*g.BaseRent*2)
		}
		g.Affordable = g.Price+g.BuildOut <= board.StartingMoney
		a.Groups = append(a.Groups, *g)

		if g.HotelRent*g.Tiles < g.Price+g.BuildOut {
			a.Warnings = append(a.Warnings, fmt.Sprintf("group %s: a full hotel row (%d) does not cover its cost (%d)",
				name, g.HotelRent*g.Tiles, g.Price+g.BuildOut))
		}
	}

	affordable := false
	for _, g := range a.Groups {
		affordable = affordable || g.Affordable
	}
	if len(a.Groups) > 0 && !affordable {
		a.Warnings = append(a.Warnings, "no group can be bought and built out on the starting money")
	}
	if board.StartingTreasury < board.StartingMoney {
		a.Warnings = append(a.Warnings, fmt.Sprintf("treasury %d is below one player's starting money", board.StartingTreasury))
	}
	if a.TypeCounts[engine.TileGoToJail] > 0 && a.TypeCounts[engine.TileJail] == 0 {
		a.Warnings = append(a.Warnings, "go_to_jail without a jail")
	}
	return a
}

func printAnalysis(out io.Writer, a BoardAnalysis) {
	fmt.Fprintf(out, "Name: %s\n", a.Name)
	fmt.Fprintf(out, "Tiles: %d\n", a.Tiles)
	fmt.Fprintf(out, "Starting Money: %d (treasury %d, start payout %d)\n", a.StartingMoney, a.Treasury, a.GoPayout)

	types := make([]string, 0, len(a.TypeCounts))
	for tt := range a.TypeCounts {
		types = append(types, string(tt))
	}
	sort.Strings(types)
	for _, tt := range types {
		fmt.Fprintf(out, "  %-11s %d\n", tt, a.TypeCounts[engine.TileType(tt)])
	}
	fmt.Fprintf(out, "Top transit rent: %d, tax on board: %d, companies: %d\n", a.TransitRent, a.TaxTotal, a.Companies)

	fmt.Fprintf(out, "\n%-12s %5s %7s %9s %6s %7s %8s\n", "group", "tiles", "price", "build-out", "rent", "hotel", "payback")
	for _, g := range a.Groups {
		mark := ""
		if !g.Affordable {
			mark = " *"
		}
		fmt.Fprintf(out, "%-12s %5d %7d %9d %6d %7d %8.1f%s\n",
			g.Name, g.Tiles, g.Price, g.BuildOut, g.BaseRent, g.HotelRent, g.Payback, mark)
	}

	if len(a.Warnings) == 0 {
		fmt.Fprintf(out, "✅ No economic red flags\n")
		return
	}
	for _, w := range a.Warnings {
		fmt.Fprintf(out, "⚠️  %s\n", w)
	}
}

func run(out io.Writer, dir string) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	boards, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(boards) == 0 {
		return fmt.Errorf("no valid boards in %s", dir)
	}

	for _, info := range boards {
		board, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(out, "\n=== %s ===\nError: %v\n", info.Filename, err)
			continue
		}
		fmt.Fprintf(out, "\n=== Analyzing %s ===\n", info.Filename)
		printAnalysis(out, analyzeBoard(board))
	}
	return nil
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := run(os.Stdout, dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
