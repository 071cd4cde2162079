package service

import (
	"context"
	"errors"

	"github.com/wricardo/statecraft/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, players []engine.PlayerSpec) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Dispatch(ctx context.Context, sessionID string, in engine.Intent) (*DispatchResult, error)
	// Undo and Redo return the restored world unredacted; callers pass it
	// through engine.ViewFor before showing it to anyone
	Undo(ctx context.Context, sessionID string) (*engine.WorldState, error)
	Redo(ctx context.Context, sessionID string) (*engine.WorldState, error)
	TickAuctions(ctx context.Context) ([]TickResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID, viewer string) (*engine.WorldState, error)
	GetLog(ctx context.Context, sessionID string, opts LogOptions) (*LogResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configName string, config *engine.GameConfig, players []engine.PlayerSpec) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles board configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Recorder receives every applied intent, e.g. an append-only journal.
// Begin runs before each dispatch so the recorder can capture the starting
// point of a session once; Record follows every applied intent. Both are
// called with the session locked.
type Recorder interface {
	Begin(sess *Session) error
	Record(sess *Session, in engine.Intent) error
}
