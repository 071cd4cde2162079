// Command replay rebuilds sessions from the intent journal and checks that
// every replayed step keeps the engine invariants.
//
//	replay session [--journal-dir journal] [--config-dir configs] <session-id>
//	replay file <path.jsonl.zst>...
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/statecraft/game/config"
	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/journal"
)

type replayOptions struct {
	ConfigDir string
	Check     bool
	Verbose   bool
	Out       string
}

// fileResult describes one replayed journal file
type fileResult struct {
	Path       string
	Run        string
	Session    string
	Config     string
	Intents    int
	Violations int
	Final      *engine.WorldState
}

func replayFile(out io.Writer, configs *config.Manager, path string, opts replayOptions) (fileResult, error) {
	res := fileResult{Path: path}

	entries, err := journal.Read(path)
	if err != nil {
		return res, err
	}
	if len(entries) == 0 || entries[0].Kind != journal.KindOpen {
		return res, journal.ErrNoOpenEntry
	}
	open := entries[0]
	res.Run, res.Session, res.Config = open.Run, open.Session, open.Config

	board, err := configs.LoadConfig(open.Config)
	if err != nil {
		return res, fmt.Errorf("board %q: %w", open.Config, err)
	}

	eng, err := journal.Replay(entries, board, func(e journal.Entry, w *engine.WorldState) error {
		res.Intents++
		if opts.Verbose {
			top := ""
			if len(w.Log) > 0 {
				top = w.Log[0].Message
			}
			fmt.Fprintf(out, "  #%d %s %v -> turn %d %s | %s\n", e.Seq, e.Intent.Type, e.Intent.Payload, w.Turn, w.Phase, top)
		}
		if !opts.Check {
			return nil
		}
		if err := engine.CheckInvariants(w); err != nil {
			res.Violations++
			fmt.Fprintf(out, "  ✗ entry %d (%s): %v\n", e.Seq, e.Intent.Type, err)
		}
		return nil
	})
	if eng != nil {
		res.Final = eng.State()
	}
	return res, err
}

func report(out io.Writer, res fileResult) {
	fmt.Fprintf(out, "%s\n", filepath.Base(res.Path))
	fmt.Fprintf(out, "  session %s, run %s, board %s\n", res.Session, res.Run, res.Config)
	fmt.Fprintf(out, "  %d intents replayed\n", res.Intents)
	if w := res.Final; w != nil {
		fmt.Fprintf(out, "  turn %d, phase %s, regime %s, treasury %d\n", w.Turn, w.Phase, w.Regime, w.Treasury)
		fmt.Fprintf(out, "  money %d (initial %d + minted %d)\n", engine.TotalMoney(w), w.InitialMoney, w.Minted)
		if w.Winner != "" {
			fmt.Fprintf(out, "  winner %s\n", w.Winner)
		}
	}
	if res.Violations == 0 {
		fmt.Fprintf(out, "  ✓ invariants held\n")
	} else {
		fmt.Fprintf(out, "  ✗ %d steps broke an invariant\n", res.Violations)
	}
}

// replayPaths replays each file and reports whether all held their invariants
func replayPaths(out io.Writer, paths []string, opts replayOptions) error {
	configs, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return err
	}

	var failed []error
	var last *engine.WorldState
	for _, path := range paths {
		res, err := replayFile(out, configs, path, opts)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", filepath.Base(path), err)
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		report(out, res)
		if res.Violations > 0 {
			failed = append(failed, fmt.Errorf("%s: %d invariant violations", path, res.Violations))
		}
		last = res.Final
	}

	if opts.Out != "" && last != nil {
		data, err := json.MarshalIndent(last, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "final state written to %s\n", opts.Out)
	}
	return errors.Join(failed...)
}

func optionsFrom(cmd *cli.Command) replayOptions {
	return replayOptions{
		ConfigDir: cmd.String("config-dir"),
		Check:     cmd.Bool("check"),
		Verbose:   cmd.Bool("verbose"),
		Out:       cmd.String("out"),
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "rebuild sessions from the intent journal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "board directory", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.BoolFlag{Name: "check", Value: true, Usage: "check invariants after every intent"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every replayed intent"},
			&cli.StringFlag{Name: "out", Usage: "write the last final state as JSON"},
		},
		Commands: []*cli.Command{
			{
				Name:      "session",
				Usage:     "replay every journal file of a session, oldest first",
				ArgsUsage: "<session-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "journal-dir", Value: "journal", Sources: cli.EnvVars("JOURNAL_DIR")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return cli.Exit("a session id is required", 2)
					}
					paths, err := journal.SessionFiles(cmd.String("journal-dir"), id)
					if err != nil {
						return err
					}
					if len(paths) == 0 {
						return cli.Exit(fmt.Sprintf("no journal files for session %s", id), 1)
					}
					return replayPaths(cmd.Root().Writer, paths, optionsFrom(cmd))
				},
			},
			{
				Name:      "file",
				Usage:     "replay the given journal files",
				ArgsUsage: "<path>...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() == 0 {
						return cli.Exit("at least one journal file is required", 2)
					}
					return replayPaths(cmd.Root().Writer, cmd.Args().Slice(), optionsFrom(cmd))
				},
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
