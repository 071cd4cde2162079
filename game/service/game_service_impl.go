package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/statecraft/game/engine"
)

const (
	defaultLogLimit = 20
	maxLogLimit     = 100
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	recorder Recorder
	logger   *zap.Logger
}

// Option customizes the service
type Option func(*gameServiceImpl)

// WithLogger sets the operational logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *gameServiceImpl) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder journals every applied intent
func WithRecorder(r Recorder) Option {
	return func(s *gameServiceImpl) { s.recorder = r }
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession creates a new game session seated with the given players
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, players []engine.PlayerSpec) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			return nil, s.configError(configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configName = config.Name
	}

	sess, err := s.sessions.Create("", configName, config, players)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("session created",
		zap.String("session", sess.ID),
		zap.String("config", configName),
		zap.Int("players", len(players)),
		zap.Uint64("seed", sess.Engine.Seed()))

	sess.Lock()
	defer sess.Unlock()
	return sessionInfo(sess, ""), nil
}

// configError lists the available configs when the requested one is missing
func (s *gameServiceImpl) configError(configName string, err error) error {
	available, listErr := s.configs.ListConfigs()
	if listErr != nil || len(available) == 0 {
		return fmt.Errorf("failed to load config %s: %w", configName, err)
	}
	ids := make([]string, 0, len(available))
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return fmt.Errorf("failed to load config %s (available: %v): %w", configName, ids, err)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	sess.Lock()
	defer sess.Unlock()
	return sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		sess.Lock()
		info := sessionInfo(sess, "")
		sess.Unlock()
		info.GameConfig = nil
		result = append(result, info)
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.logger.Info("session deleted", zap.String("session", sessionID))
	return nil
}

// Dispatch applies one intent to a session
func (s *gameServiceImpl) Dispatch(ctx context.Context, sessionID string, in engine.Intent) (*DispatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	sess.Lock()
	prev := sess.Engine.State()
	s.begin(sess)
	next := sess.Engine.Dispatch(in)
	sess.History.Observe(prev, next)
	result := dispatchResult(prev, next, in)
	if result.Applied {
		s.record(sess, in)
	}
	result.GameState = engine.ViewFor(next, "")
	result.World = next
	sess.Unlock()

	_ = s.sessions.UpdateLastAccessed(sessionID)

	if result.Rejected {
		s.logger.Debug("intent rejected",
			zap.String("session", sessionID),
			zap.String("intent", in.Type),
			zap.String("reason", result.Reason))
	}
	return result, nil
}

// Undo restores the snapshot taken before the latest change of player or turn
func (s *gameServiceImpl) Undo(ctx context.Context, sessionID string) (*engine.WorldState, error) {
	return s.travel(ctx, sessionID, true)
}

// Redo reverses the latest Undo
func (s *gameServiceImpl) Redo(ctx context.Context, sessionID string) (*engine.WorldState, error) {
	return s.travel(ctx, sessionID, false)
}

func (s *gameServiceImpl) travel(ctx context.Context, sessionID string, back bool) (*engine.WorldState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	sess.Lock()
	current := sess.Engine.State()
	var (
		snap *engine.WorldState
		ok   bool
	)
	if back {
		snap, ok = sess.History.Undo(current)
	} else {
		snap, ok = sess.History.Redo(current)
	}
	if !ok {
		sess.Unlock()
		if back {
			return nil, ErrNothingToUndo
		}
		return nil, ErrNothingToRedo
	}
	restore := engine.RestoreIntent(snap)
	s.begin(sess)
	state := sess.Engine.Dispatch(restore)
	s.record(sess, restore)
	sess.Unlock()

	_ = s.sessions.Save(sessionID)
	s.logger.Info("session restored", zap.String("session", sessionID), zap.Bool("undo", back), zap.Int("turn", state.Turn))
	return state.Clone(), nil
}

// TickAuctions advances the clock of every open auction by one tick
func (s *gameServiceImpl) TickAuctions(ctx context.Context) ([]TickResult, error) {
	var results []TickResult
	tick := engine.NewIntent(engine.IntentAuctionTick, nil)

	for _, sess := range s.sessions.List() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		sess.Lock()
		prev := sess.Engine.State()
		if prev.Auction == nil || prev.Phase == engine.PhaseGameOver {
			sess.Unlock()
			continue
		}
		s.begin(sess)
		next := sess.Engine.Dispatch(tick)
		s.record(sess, tick)
		resolved := next.Auction == nil || next.Auction.ID != prev.Auction.ID
		results = append(results, TickResult{SessionID: sess.ID, GameState: engine.ViewFor(next, ""), World: next, Resolved: resolved})
		sess.Unlock()

		if resolved {
			s.logger.Info("auction resolved", zap.String("session", sess.ID), zap.String("auction", prev.Auction.ID))
			if err := s.sessions.Save(sess.ID); err != nil {
				s.logger.Warn("failed to persist session", zap.String("session", sess.ID), zap.Error(err))
			}
		}
	}
	return results, nil
}

// GetGameState returns the world as seen by viewer; an empty viewer gets the public view
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID, viewer string) (*engine.WorldState, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)

	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.View(viewer), nil
}

// GetLog returns a page of the game log, most recent first
func (s *gameServiceImpl) GetLog(ctx context.Context, sessionID string, opts LogOptions) (*LogResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	sess.Lock()
	log := sess.Engine.State().Log
	sess.Unlock()

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = defaultLogLimit
	}
	if opts.Limit > maxLogLimit {
		opts.Limit = maxLogLimit
	}

	entries := make([]engine.LogEntry, 0, len(log))
	for _, e := range log {
		if opts.Kind == "" || e.Kind == opts.Kind {
			entries = append(entries, e)
		}
	}

	total := len(entries)
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}
	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)
	page := []engine.LogEntry{}
	if start < total {
		page = entries[start:end]
	}

	return &LogResponse{
		Entries:     page,
		Total:       total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available board configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific board configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a board configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) begin(sess *Session) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Begin(sess); err != nil {
		s.logger.Warn("failed to open journal", zap.String("session", sess.ID), zap.Error(err))
	}
}

func (s *gameServiceImpl) record(sess *Session, in engine.Intent) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(sess, in); err != nil {
		s.logger.Warn("failed to journal intent", zap.String("session", sess.ID), zap.String("intent", in.Type), zap.Error(err))
	}
}

// sessionInfo must be called with the session locked
func sessionInfo(sess *Session, viewer string) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigName,
		Seed:           sess.Engine.Seed(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Players:        sess.Players,
		GameState:      sess.Engine.View(viewer),
		GameConfig:     sess.Config,
		CanUndo:        sess.History.CanUndo(),
		CanRedo:        sess.History.CanRedo(),
	}
}

// dispatchResult compares the worlds around one transition
func dispatchResult(prev, next *engine.WorldState, in engine.Intent) *DispatchResult {
	result := &DispatchResult{Applied: next != prev}
	if !result.Applied || in.Type == engine.IntentRestoreState {
		return result
	}

	now := time.Now()
	for _, entry := range newEntries(prev, next) {
		result.Events = append(result.Events, GameEvent{
			ID:        uuid.NewString(),
			Type:      entry.Kind,
			Turn:      entry.Turn,
			Message:   entry.Message,
			Timestamp: now,
		})
	}
	if len(result.Events) > 0 {
		if kind := next.Log[0].Kind; kind == engine.LogDenied || kind == engine.LogPolicy {
			result.Rejected = true
			result.Reason = next.Log[0].Message
		}
	}
	return result
}

// newEntries returns the log lines next gained over prev, oldest first.
// The log only grows at the front, so a longer log differs by its head; a
// log at capacity is aligned against the previous one.
func newEntries(prev, next *engine.WorldState) []engine.LogEntry {
	added := next.Log
	switch {
	case prev == nil:
	case len(next.Log) > len(prev.Log):
		added = next.Log[:len(next.Log)-len(prev.Log)]
	default:
		for k := 1; k <= len(next.Log); k++ {
			if sameEntries(next.Log[k:], prev.Log[:len(next.Log)-k]) {
				added = next.Log[:k]
				break
			}
		}
	}
	out := make([]engine.LogEntry, 0, len(added))
	for i := len(added) - 1; i >= 0; i-- {
		out = append(out, added[i])
	}
	return out
}

func sameEntries(a, b []engine.LogEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
