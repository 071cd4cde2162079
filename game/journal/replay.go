package journal

import (
	"errors"
	"fmt"

	"github.com/wricardo/statecraft/game/engine"
)

var ErrNoOpenEntry = errors.New("journal has no open entry")

// StepFunc observes the world after each replayed intent
type StepFunc func(e Entry, w *engine.WorldState) error

// Replay rebuilds an engine from the open entry and dispatches the intents
// that follow it. config must be the board named by the open entry.
func Replay(entries []Entry, config *engine.GameConfig, step StepFunc) (*engine.GameEngine, error) {
	if len(entries) == 0 || entries[0].Kind != KindOpen {
		return nil, ErrNoOpenEntry
	}
	open := entries[0]

	eng, err := engine.NewEngineWithSeed(config, open.Players, open.Seed)
	if err != nil {
		return nil, err
	}
	if open.State != nil {
		if err := eng.SetState(open.State); err != nil {
			return nil, err
		}
	}
	if len(open.Entropy) > 0 {
		if err := eng.SetEntropyState(open.Entropy); err != nil {
			return nil, err
		}
	}

	last := open.Seq
	for _, e := range entries[1:] {
		if e.Kind != KindIntent || e.Intent == nil {
			continue
		}
		if e.Seq != last+1 {
			return eng, fmt.Errorf("sequence gap: want %d, got %d", last+1, e.Seq)
		}
		last = e.Seq

		w := eng.Dispatch(*e.Intent)
		if step != nil {
			if err := step(e, w); err != nil {
				return eng, fmt.Errorf("entry %d (%s): %w", e.Seq, e.Intent.Type, err)
			}
		}
	}
	return eng, nil
}
