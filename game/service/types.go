package service

import (
	"sync"
	"time"

	"github.com/wricardo/statecraft/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	Seed           uint64              `json:"seed"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Players        []engine.PlayerSpec `json:"players"`
	GameState      *engine.WorldState  `json:"game_state"`
	GameConfig     *engine.GameConfig  `json:"game_config,omitempty"`
	CanUndo        bool                `json:"can_undo"`
	CanRedo        bool                `json:"can_redo"`
}

// DispatchResult is the outcome of one intent
type DispatchResult struct {
	// Applied is false when the intent was unknown or ignored
	Applied bool `json:"applied"`
	// Rejected is set when the engine logged a denial or policy block
	Rejected  bool               `json:"rejected"`
	Reason    string             `json:"reason,omitempty"`
	GameState *engine.WorldState `json:"game_state"`
	Events    []GameEvent        `json:"events,omitempty"`
	// World is the unredacted result, for server-side fan-out only
	World *engine.WorldState `json:"-"`
}

// GameEvent is a log line produced by a dispatch
type GameEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Turn      int       `json:"turn"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// LogOptions configures log retrieval
type LogOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Kind  string `json:"kind,omitempty"`
}

// LogResponse contains a page of the game log, most recent first
type LogResponse struct {
	Entries     []engine.LogEntry `json:"entries"`
	Total       int               `json:"total"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	TotalPages  int               `json:"total_pages"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
}

// TickResult reports a session whose auction clock advanced
type TickResult struct {
	SessionID string             `json:"session_id"`
	GameState *engine.WorldState `json:"game_state"`
	Resolved  bool               `json:"resolved"`
	// World is the unredacted result, for server-side fan-out only
	World *engine.WorldState `json:"-"`
}

// ConfigInfo provides information about a board configuration
type ConfigInfo struct {
	Filename      string        `json:"filename"`
	ConfigID      string        `json:"config_id"` // identifier used for session creation
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Tiles         int           `json:"tiles"`
	StartingMoney int           `json:"starting_money"`
	Regime        engine.Regime `json:"regime"`
	HasOverlay    bool          `json:"has_overlay"`
}

// Session represents an active game session. Lock serializes dispatch.
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	ConfigName     string
	Players        []engine.PlayerSpec
	CreatedAt      time.Time
	LastAccessedAt time.Time
	History        *History

	mu sync.Mutex
}

func (s *Session) Lock() { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }
