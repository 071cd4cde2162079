package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Dispatch applies one intent and returns the new world
	Dispatch(in Intent) *WorldState

	// State management
	State() *WorldState
	SetState(state *WorldState) error
	EntropyState() ([]byte, error)
	SetEntropyState(data []byte) error

	// Views
	View(viewer string) *WorldState
	TotalMoney() int
	IsGameOver() bool

	// Configuration
	Config() *GameConfig
	Seed() uint64
}

// GameEngine implements the Engine interface around the pure Transition
type GameEngine struct {
	state  *WorldState
	config *GameConfig
	seed   uint64
	rng    *SeededEntropy
	logger *zap.Logger
}

// NewEngine creates an engine for the given seats, seeded from the config
func NewEngine(config *GameConfig, players []PlayerSpec) (*GameEngine, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	return NewEngineWithSeed(config, players, config.Seed)
}

// NewEngineWithSeed creates an engine with an explicit entropy seed
func NewEngineWithSeed(config *GameConfig, players []PlayerSpec, seed uint64) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if err := ValidatePlayers(players); err != nil {
		return nil, err
	}
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config, players),
		seed:   seed,
		rng:    NewSeededEntropy(seed),
		logger: zap.NewNop(),
	}, nil
}

// WithLogger attaches an operational logger
func (e *GameEngine) WithLogger(logger *zap.Logger) *GameEngine {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Dispatch applies one intent
func (e *GameEngine) Dispatch(in Intent) *WorldState {
	prev := e.state
	e.state = Transition(e.state, in, Env{Rand: e.rng, Tuning: e.config.Tuning})
	if e.state == prev {
		e.logger.Debug("intent was a no-op", zap.String("intent", in.Type))
	} else if len(e.state.Log) > 0 && (e.state.Log[0].Kind == LogDenied || e.state.Log[0].Kind == LogPolicy) {
		e.logger.Debug("intent rejected", zap.String("intent", in.Type), zap.String("reason", e.state.Log[0].Message))
	}
	return e.state
}

// State returns the current world
func (e *GameEngine) State() *WorldState {
	return e.state
}

// SetState replaces the world (used for persistence loading)
func (e *GameEngine) SetState(state *WorldState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// EntropyState captures the random generator position
func (e *GameEngine) EntropyState() ([]byte, error) {
	return e.rng.MarshalBinary()
}

// SetEntropyState restores a position captured by EntropyState
func (e *GameEngine) SetEntropyState(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return e.rng.UnmarshalBinary(data)
}

// View returns the world as seen by a player
func (e *GameEngine) View(viewer string) *WorldState {
	return ViewFor(e.state, viewer)
}

// TotalMoney sums every cash pool of the current world
func (e *GameEngine) TotalMoney() int {
	return TotalMoney(e.state)
}

// IsGameOver reports whether a winner has been decided
func (e *GameEngine) IsGameOver() bool {
	return e.state.Phase == PhaseGameOver
}

// Config returns the board configuration
func (e *GameEngine) Config() *GameConfig {
	return e.config
}

// Seed returns the entropy seed the engine started from
func (e *GameEngine) Seed() uint64 {
	return e.seed
}
