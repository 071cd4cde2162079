// Command validate checks the board configurations in a config directory.
// Each board is checked three ways:
//   - against the embedded JSON Schema (board.schema.json)
//   - by the engine's own rules, the same ones a server applies at load
//   - together with its optional <name>.tuning.yaml overlay
//
// Usage: validate [config-dir] (defaults to ../configs)
package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wricardo/statecraft/game/config"
	"github.com/wricardo/statecraft/game/engine"
)

//go:embed board.schema.json
var boardSchema []byte

const schemaURL = "https://statecraft.local/board.schema.json"

// ValidationResult captures the outcome of validating a single board.
// Errors holds what made it invalid; Info holds the summary printed for
// valid boards.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(boardSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

// validateConfig validates one board file, and its tuning overlay when
// manager is given
func validateConfig(schema *jsonschema.Schema, manager *config.Manager, filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			for _, e := range verr.BasicOutput().Errors {
				if e.Error == "" || strings.HasPrefix(e.Error, "doesn't validate with") {
					continue
				}
				location := e.InstanceLocation
				if location == "" {
					location = "/"
				}
				result.fail("Schema: %s: %s", location, e.Error)
			}
		} else {
			result.fail("Schema: %v", err)
		}
	}

	board, err := engine.ParseGameConfig(data)
	if err != nil {
		result.fail("Engine: %v", err)
		return result
	}

	if manager != nil {
		name := strings.TrimSuffix(result.File, ".json")
		if err := manager.ReloadConfig(name); err != nil {
			result.fail("Overlay: %v", err)
		}
	}

	if result.Valid {
		result.Info = summarize(board)
	}
	return result
}

func summarize(board *engine.GameConfig) []string {
	counts := map[engine.TileType]int{}
	groups := map[string]bool{}
	boardValue := 0
	for _, t := range board.Board {
		counts[t.Type]++
		if t.Group != "" {
			groups[t.Group] = true
		}
		boardValue += t.Price
	}

	types := make([]string, 0, len(counts))
	for tt, n := range counts {
		types = append(types, fmt.Sprintf("%s=%d", tt, n))
	}
	sort.Strings(types)

	regime := board.StartingRegime
	if regime == "" {
		regime = engine.Democracy
	}

	return []string{
		fmt.Sprintf("✓ Name: %s", board.Name),
		fmt.Sprintf("✓ Tiles: %d (%s)", len(board.Board), strings.Join(types, ", ")),
		fmt.Sprintf("✓ Colour groups: %d", len(groups)),
		fmt.Sprintf("✓ Board value: %d", boardValue),
		fmt.Sprintf("✓ Money: %d per player, treasury %d", board.StartingMoney, board.StartingTreasury),
		fmt.Sprintf("✓ Companies: %d", len(board.Companies)),
		fmt.Sprintf("✓ Starting regime: %s", regime),
	}
}

// validateDir validates every board in dir and reports whether all passed
func validateDir(dir string) ([]ValidationResult, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	manager, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("find config files: %w", err)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(schema, manager, file))
	}
	return results, nil
}

// main validates every board and exits non-zero if any are invalid
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	results, err := validateDir(configDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
