// Command selfplay plays seeded random games and checks the engine's
// invariants after every intent: money conservation, ownership exclusivity,
// share conservation, turn-pointer sanity and that turns keep coming.
//
// Games run in-process by default; with --url they are played through a
// running server's REST API, exercising the whole stack.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/statecraft/game/config"
	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/logs"
)

type runConfig struct {
	Games     int
	Seed      uint64
	ConfigDir string
	Board     string
	Players   int
	Noise     float64
	URL       string
	Keep      bool
	Verify    bool
	Options   Options
}

type summary struct {
	Games    int
	Finished int
	Failed   int
	Intents  int
	Turns    int
	Wins     map[string]int
}

func seats(n int) []engine.PlayerSpec {
	players := make([]engine.PlayerSpec, n)
	for i := range players {
		id := fmt.Sprintf("p%d", i+1)
		players[i] = engine.PlayerSpec{ID: id, Name: id, IsBot: true}
	}
	return players
}

func runGames(ctx context.Context, out io.Writer, rc runConfig, logger *zap.Logger) (summary, error) {
	sum := summary{Wins: map[string]int{}}
	players := seats(rc.Players)
	if err := engine.ValidatePlayers(players); err != nil {
		return sum, err
	}

	var board *engine.GameConfig
	if rc.URL == "" {
		manager, err := config.NewManager(rc.ConfigDir)
		if err != nil {
			return sum, err
		}
		if board, err = manager.LoadConfig(rc.Board); err != nil {
			return sum, err
		}
	}

	newTable := func(seed uint64) (Table, error) {
		if rc.URL != "" {
			return newRemoteTable(ctx, rc.URL, rc.Board, players, rc.Keep)
		}
		return newLocalTable(board, players, seed)
	}

	play := func(seed uint64) (Report, error) {
		table, err := newTable(seed)
		if err != nil {
			return Report{}, err
		}
		defer table.Close(ctx)
		return playGame(ctx, table, NewBot(seed, rc.Noise), rc.Options, logger)
	}

	for g := 0; g < rc.Games; g++ {
		seed := rc.Seed + uint64(g)
		report, err := play(seed)
		report.Game, report.Seed = g+1, seed
		sum.Games++
		sum.Intents += report.Intents

		if err == nil && rc.Verify && rc.URL == "" {
			err = verifyDeterminism(report, play)
		}
		if err != nil {
			sum.Failed++
			fmt.Fprintf(out, "game %d (seed %d): FAIL after %d intents: %v\n", report.Game, seed, report.Intents, err)
			logger.Error("game failed", zap.Int("game", report.Game), zap.Uint64("seed", seed), zap.Error(err))
			continue
		}

		sum.Turns += report.Turns
		status := "unfinished"
		if report.Finished {
			sum.Finished++
			sum.Wins[report.Winner]++
			status = "won by " + report.Winner
		}
		fmt.Fprintf(out, "game %d (seed %d): %d turns, %d intents (%d applied, %d refused), %s\n",
			report.Game, seed, report.Turns, report.Intents, report.Applied, report.Rejected, status)
	}

	fmt.Fprintf(out, "\n%d games, %d finished, %d failed, %d intents\n", sum.Games, sum.Finished, sum.Failed, sum.Intents)
	return sum, nil
}

// verifyDeterminism replays a game with the same seeds and compares the end
func verifyDeterminism(first Report, play func(uint64) (Report, error)) error {
	again, err := play(first.Seed)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	a, err := fingerprint(first.Final)
	if err != nil {
		return err
	}
	b, err := fingerprint(again.Final)
	if err != nil {
		return err
	}
	if a != b {
		return fmt.Errorf("replay with seed %d diverged (%d vs %d intents)", first.Seed, first.Intents, again.Intents)
	}
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "selfplay",
		Usage: "play random games and check the engine invariants",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 20, Usage: "games to play"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "seed of the first game; game i uses seed+i"},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "board directory", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "board", Value: config.DefaultName, Usage: "board to play"},
			&cli.IntFlag{Name: "players", Value: 4, Usage: "seats per game"},
			&cli.IntFlag{Name: "max-turns", Value: 400, Usage: "stop a game after this many turns"},
			&cli.IntFlag{Name: "max-stall", Value: 500, Usage: "intents allowed within one turn"},
			&cli.FloatFlag{Name: "noise", Value: 0.1, Usage: "share of random intents"},
			&cli.StringFlag{Name: "url", Usage: "play against a running server instead of in-process"},
			&cli.BoolFlag{Name: "keep", Usage: "keep remote sessions after the game"},
			&cli.BoolFlag{Name: "verify", Usage: "replay every game and compare the final worlds"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Sources: cli.EnvVars("LOG_LEVEL")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := logs.Init("selfplay", logs.Config{Level: cmd.String("log-level")}); err != nil {
				return err
			}
			defer logs.Sync()

			sum, err := runGames(ctx, cmd.Writer, runConfig{
				Games:     cmd.Int("games"),
				Seed:      cmd.Uint64("seed"),
				ConfigDir: cmd.String("config-dir"),
				Board:     cmd.String("board"),
				Players:   cmd.Int("players"),
				Noise:     cmd.Float("noise"),
				URL:       cmd.String("url"),
				Keep:      cmd.Bool("keep"),
				Verify:    cmd.Bool("verify"),
				Options: Options{
					MaxTurns: cmd.Int("max-turns"),
					MaxStall: cmd.Int("max-stall"),
				},
			}, logs.L())
			if err != nil {
				return err
			}
			if sum.Failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d games broke an invariant", sum.Failed, sum.Games), 1)
			}
			return nil
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
