package service

import "github.com/wricardo/statecraft/game/engine"

// DefaultHistoryLimit bounds the undo stack
const DefaultHistoryLimit = 50

// History keeps world snapshots taken whenever the current player or the
// turn changes. Worlds are never mutated after a transition, so snapshots
// are stored by pointer.
type History struct {
	undo  []*engine.WorldState
	redo  []*engine.WorldState
	limit int
}

// NewHistory creates an empty history holding at most limit snapshots
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Observe records prev when next hands play to another player or turn.
// Worlds from before the game started are not recorded.
func (h *History) Observe(prev, next *engine.WorldState) bool {
	if prev == nil || next == nil || prev == next || !prev.Started {
		return false
	}
	if prev.CurrentPlayerIndex == next.CurrentPlayerIndex && prev.Turn == next.Turn {
		return false
	}
	h.undo = append(h.undo, prev)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
	return true
}

// Undo pops the latest snapshot and remembers current for Redo
func (h *History) Undo(current *engine.WorldState) (*engine.WorldState, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	snap := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return snap, true
}

// Redo reverses the latest Undo
func (h *History) Redo(current *engine.WorldState) (*engine.WorldState, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	snap := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return snap, true
}

func (h *History) CanUndo() bool { return h != nil && len(h.undo) > 0 }

func (h *History) CanRedo() bool { return h != nil && len(h.redo) > 0 }
