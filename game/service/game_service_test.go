package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*service.Session
	saved    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{sessions: make(map[string]*service.Session)}
}

func (m *MockSessionManager) Create(id, configName string, config *engine.GameConfig, players []engine.PlayerSpec) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}
	eng, err := engine.NewEngine(config, players)
	if err != nil {
		return nil, err
	}
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		ConfigName:     configName,
		Players:        players,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
		History:        service.NewHistory(0),
	}
	m.sessions[id] = sess
	return sess, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return sess, nil
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	sess, err := m.Get(id)
	if err != nil {
		return err
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

func (m *MockSessionManager) Save(id string) error {
	if _, err := m.Get(id); err != nil {
		return err
	}
	m.mu.Lock()
	m.saved++
	m.mu.Unlock()
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	classic := engine.DefaultGameConfig()
	classic.Seed = 7
	return &MockConfigManager{configs: map[string]*engine.GameConfig{"classic": classic}}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	if config, ok := m.configs[name]; ok {
		return config, nil
	}
	return nil, service.ErrConfigNotFound
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var infos []*service.ConfigInfo
	for id, c := range m.configs {
		infos = append(infos, &service.ConfigInfo{ConfigID: id, Name: c.Name, Tiles: len(c.Board)})
	}
	return infos, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

// MockRecorder captures journaled intents
type MockRecorder struct {
	mu      sync.Mutex
	intents []string
}

func (r *MockRecorder) Begin(sess *service.Session) error { return nil }

func (r *MockRecorder) Record(sess *service.Session, in engine.Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, in.Type)
	return nil
}

func seats() []engine.PlayerSpec {
	return []engine.PlayerSpec{
		{ID: "ana", Name: "Ana", Role: engine.RoleCitizen},
		{ID: "ben", Name: "Ben", Role: engine.RoleOfficial},
	}
}

func newTestService(t *testing.T) (service.GameService, *MockSessionManager, *MockRecorder) {
	t.Helper()
	sessions := NewMockSessionManager()
	rec := &MockRecorder{}
	return service.NewGameService(sessions, NewMockConfigManager(), service.WithRecorder(rec)), sessions, rec
}

func startedSession(t *testing.T, svc service.GameService) string {
	t.Helper()
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "classic", seats())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := svc.Dispatch(ctx, info.ID, engine.NewIntent(engine.IntentStartGame, nil)); err != nil {
		t.Fatalf("Failed to start game: %v", err)
	}
	return info.ID
}

func TestGameService_CreateSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	t.Run("named config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "classic", seats())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.ConfigName != "classic" || info.Seed != 7 {
			t.Errorf("Expected classic with seed 7, got %s and %d", info.ConfigName, info.Seed)
		}
		if info.GameState.Phase != engine.PhaseSetup || len(info.GameState.Players) != 2 {
			t.Errorf("Expected two seats in setup, got %d in %s", len(info.GameState.Players), info.GameState.Phase)
		}
		if info.GameState.Player("ben").Role != engine.RoleHidden {
			t.Error("Expected roles hidden in the public view")
		}
	})

	t.Run("default config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "", seats())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.ConfigName != "classic" {
			t.Errorf("Expected the default board, got %s", info.ConfigName)
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "atlantis", seats())
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("too few players", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "classic", seats()[:1])
		if !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("Expected a seat validation error, got %v", err)
		}
	})
}

func TestGameService_Dispatch(t *testing.T) {
	svc, _, rec := newTestService(t)
	ctx := context.Background()
	id := startedSession(t, svc)

	t.Run("rejected intent", func(t *testing.T) {
		res, err := svc.Dispatch(ctx, id, engine.NewIntent(engine.IntentEndTurn, nil))
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if !res.Applied || !res.Rejected || res.Reason == "" {
			t.Errorf("Expected a logged rejection, got %+v", res)
		}
		if len(res.Events) != 1 || res.Events[0].Type != engine.LogDenied || res.Events[0].ID == "" {
			t.Errorf("Expected one denied event, got %+v", res.Events)
		}
	})

	t.Run("unknown intent", func(t *testing.T) {
		res, err := svc.Dispatch(ctx, id, engine.NewIntent("FLY", nil))
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if res.Applied || len(res.Events) != 0 {
			t.Errorf("Expected an unknown intent to change nothing, got %+v", res)
		}
	})

	t.Run("roll", func(t *testing.T) {
		res, err := svc.Dispatch(ctx, id, engine.NewIntent(engine.IntentRollDice, nil))
		if err != nil {
			t.Fatalf("Dispatch failed: %v", err)
		}
		if res.Rejected || !res.GameState.HasRolled {
			t.Errorf("Expected the roll to apply, got %+v", res)
		}
		if err := engine.CheckInvariants(res.GameState); err != nil {
			t.Errorf("Invariants broken: %v", err)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := svc.Dispatch(ctx, "nope", engine.NewIntent(engine.IntentRollDice, nil))
		if !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := svc.Dispatch(cctx, id, engine.NewIntent(engine.IntentRollDice, nil)); err == nil {
			t.Error("Expected a cancelled context to fail")
		}
	})

	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{engine.IntentStartGame, engine.IntentEndTurn, engine.IntentRollDice}
	if fmt.Sprint(rec.intents) != fmt.Sprint(want) {
		t.Errorf("Expected journal %v, got %v", want, rec.intents)
	}
}

// readyToEnd replaces the world with one whose current player may end the turn
func readyToEnd(t *testing.T, svc service.GameService, sessions *MockSessionManager, id string) {
	t.Helper()
	sess, _ := sessions.Get(id)
	w := sess.Engine.State().Clone()
	w.Phase = engine.PhaseTurnEnded
	w.HasRolled = true
	if _, err := svc.Dispatch(context.Background(), id, engine.RestoreIntent(w)); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
}

func TestGameService_UndoRedo(t *testing.T) {
	svc, sessions, _ := newTestService(t)
	ctx := context.Background()
	id := startedSession(t, svc)

	if _, err := svc.Undo(ctx, id); !errors.Is(err, service.ErrNothingToUndo) {
		t.Fatalf("Expected ErrNothingToUndo, got %v", err)
	}

	readyToEnd(t, svc, sessions, id)
	res, err := svc.Dispatch(ctx, id, engine.NewIntent(engine.IntentEndTurn, nil))
	if err != nil || res.Rejected {
		t.Fatalf("Expected END_TURN to apply, got %v %+v", err, res)
	}
	if res.GameState.Turn != 2 {
		t.Fatalf("Expected turn 2, got %d", res.GameState.Turn)
	}

	info, _ := svc.GetSession(ctx, id)
	if !info.CanUndo || info.CanRedo {
		t.Errorf("Expected undo available, got undo=%v redo=%v", info.CanUndo, info.CanRedo)
	}

	state, err := svc.Undo(ctx, id)
	if err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if state.Turn != 1 || state.Phase != engine.PhaseTurnEnded {
		t.Errorf("Expected the end of turn 1, got turn %d in %s", state.Turn, state.Phase)
	}

	state, err = svc.Redo(ctx, id)
	if err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if state.Turn != 2 {
		t.Errorf("Expected turn 2 after redo, got %d", state.Turn)
	}
	if _, err := svc.Redo(ctx, id); !errors.Is(err, service.ErrNothingToRedo) {
		t.Errorf("Expected ErrNothingToRedo, got %v", err)
	}
}

func TestGameService_TickAuctions(t *testing.T) {
	svc, sessions, _ := newTestService(t)
	ctx := context.Background()
	id := startedSession(t, svc)
	idle := startedSession(t, svc)

	sess, _ := sessions.Get(id)
	w := sess.Engine.State().Clone()
	w.Auction = &engine.Auction{ID: "auction-1", Kind: engine.AuctionTile, TileIDs: []int{1},
		Bidders: []string{"ana", "ben"}, TicksLeft: 2}
	if _, err := svc.Dispatch(ctx, id, engine.RestoreIntent(w)); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	results, err := svc.TickAuctions(ctx)
	if err != nil {
		t.Fatalf("TickAuctions failed: %v", err)
	}
	if len(results) != 1 || results[0].SessionID != id || results[0].Resolved {
		t.Fatalf("Expected one running auction, got %+v", results)
	}
	if results[0].GameState.Auction.TicksLeft != 1 {
		t.Errorf("Expected 1 tick left, got %d", results[0].GameState.Auction.TicksLeft)
	}

	clock := service.NewAuctionClock(svc, time.Millisecond, func(r service.TickResult) {
		if r.SessionID == idle {
			t.Error("Expected sessions without an auction to be skipped")
		}
	}, nil)
	if n := clock.Tick(ctx); n != 1 {
		t.Fatalf("Expected the clock to advance one auction, got %d", n)
	}

	state, _ := svc.GetGameState(ctx, id, "")
	if state.Auction != nil || state.Tiles[1].Owner.Kind != engine.OwnerState {
		t.Errorf("Expected the unsold tile to go to the state, got %+v", state.Tiles[1].Owner)
	}
	if sessions.saved == 0 {
		t.Error("Expected the resolved session to be saved")
	}
}

func TestGameService_GetLog(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	id := startedSession(t, svc)

	for i := 0; i < 5; i++ {
		svc.Dispatch(ctx, id, engine.NewIntent(engine.IntentEndTurn, nil))
	}

	page, err := svc.GetLog(ctx, id, service.LogOptions{Page: 1, Limit: 2, Kind: engine.LogDenied})
	if err != nil {
		t.Fatalf("GetLog failed: %v", err)
	}
	if page.Total != 5 || len(page.Entries) != 2 || page.TotalPages != 3 || !page.HasNext || page.HasPrevious {
		t.Errorf("Unexpected page: %+v", page)
	}

	last, _ := svc.GetLog(ctx, id, service.LogOptions{Page: 3, Limit: 2, Kind: engine.LogDenied})
	if len(last.Entries) != 1 || last.HasNext {
		t.Errorf("Expected one entry on the last page, got %+v", last)
	}

	all, _ := svc.GetLog(ctx, id, service.LogOptions{})
	if all.PageSize != 20 || all.Entries[0].Kind != engine.LogDenied {
		t.Errorf("Expected the newest entry first with default paging, got %+v", all.Entries[0])
	}
}

func TestGameService_GetGameStateRedactsRoles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	id := startedSession(t, svc)

	own, err := svc.GetGameState(ctx, id, "ben")
	if err != nil {
		t.Fatalf("GetGameState failed: %v", err)
	}
	if own.Player("ben").Role != engine.RoleOfficial || own.Player("ana").Role != engine.RoleHidden {
		t.Errorf("Expected ben to see only his own role, got %s and %s", own.Player("ben").Role, own.Player("ana").Role)
	}
}

func TestGameService_DeleteAndList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	a := startedSession(t, svc)
	startedSession(t, svc)

	list, _ := svc.ListSessions(ctx)
	if len(list) != 2 || list[0].GameConfig != nil {
		t.Errorf("Expected two compact sessions, got %d", len(list))
	}
	if err := svc.DeleteSession(ctx, a); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, a); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected the session gone, got %v", err)
	}
}
