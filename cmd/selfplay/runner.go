package main

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/wricardo/statecraft/game/engine"
)

// Options bound one game
type Options struct {
	MaxTurns int
	MaxStall int // intents allowed without the turn counter moving
}

// Report is the outcome of one game
type Report struct {
	Game     int
	Seed     uint64
	Turns    int
	Intents  int
	Applied  int
	Rejected int
	Winner   string
	Finished bool
	Final    *engine.WorldState
}

// playGame drives one game on table until it ends or MaxTurns is reached,
// checking the invariants after every intent. Any violation is returned as
// an error together with the partial report.
func playGame(ctx context.Context, table Table, bot *Bot, opts Options, logger *zap.Logger) (Report, error) {
	var report Report

	w, err := table.Start(ctx)
	if err != nil {
		return report, err
	}
	if !w.Started {
		return report, fmt.Errorf("game did not start: %s", lastLog(w))
	}
	if err := engine.CheckInvariants(w); err != nil {
		return report, fmt.Errorf("after START_GAME: %w", err)
	}

	stall := 0
	for w.Phase != engine.PhaseGameOver && w.Turn <= opts.MaxTurns {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		in := bot.Next(w)
		next, err := table.Dispatch(ctx, in)
		if err != nil {
			return report, err
		}
		report.Intents++

		progressed, rejected := outcome(w, next)
		bot.Observe(progressed && !rejected)
		if progressed {
			report.Applied++
		}
		if rejected {
			report.Rejected++
		}

		if err := engine.CheckInvariants(next); err != nil {
			return report, fmt.Errorf("turn %d, intent %d (%s %v): %w", w.Turn, report.Intents, in.Type, in.Payload, err)
		}
		if next.Turn < w.Turn {
			return report, fmt.Errorf("turn counter went back from %d to %d on %s", w.Turn, next.Turn, in.Type)
		}
		if next.Turn == w.Turn {
			stall++
		} else {
			stall = 0
		}
		if stall > opts.MaxStall {
			return report, fmt.Errorf("turn %d stalled for %d intents in phase %s: %s", w.Turn, stall, next.Phase, lastLog(next))
		}

		if logger != nil && next.Turn != w.Turn {
			logger.Debug("turn",
				zap.Int("turn", next.Turn),
				zap.String("regime", string(next.Regime)),
				zap.Int("treasury", next.Treasury),
				zap.Int("alive", next.AliveCount()))
		}
		w = next
	}

	report.Turns = w.Turn
	report.Winner = w.Winner
	report.Finished = w.Phase == engine.PhaseGameOver
	report.Final = w
	return report, nil
}

// outcome reports whether next differs from prev and whether the newest log
// line is a refusal
func outcome(prev, next *engine.WorldState) (progressed, rejected bool) {
	if prev == next {
		return false, false
	}
	if newLogLine(prev, next) {
		kind := next.Log[0].Kind
		rejected = kind == engine.LogDenied || kind == engine.LogPolicy
	}
	return !rejected, rejected
}

func newLogLine(prev, next *engine.WorldState) bool {
	switch {
	case len(next.Log) == 0:
		return false
	case len(prev.Log) == 0 || len(next.Log) > len(prev.Log):
		return true
	}
	return next.Log[0] != prev.Log[0]
}

func lastLog(w *engine.WorldState) string {
	if w == nil || len(w.Log) == 0 {
		return "no log"
	}
	return w.Log[0].Message
}

// fingerprint identifies a final world for determinism checks
func fingerprint(w *engine.WorldState) (string, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
