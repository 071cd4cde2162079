package session

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/wricardo/statecraft/game/config"
	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, string) {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	dir := t.TempDir()
	fp, err := NewFilePersistence(dir, configManager)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	return fp, dir
}

func startedSession(t *testing.T, id, configName string) *service.Session {
	t.Helper()
	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	gameConfig, err := configManager.LoadConfig(configName)
	if err != nil {
		t.Fatalf("Failed to load %s: %v", configName, err)
	}
	eng, err := engine.NewEngineWithSeed(gameConfig, testSeats(), 42)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	eng.Dispatch(engine.NewIntent(engine.IntentStartGame, nil))

	now := time.Now().Truncate(time.Second)
	return &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         gameConfig,
		ConfigName:     configName,
		Players:        testSeats(),
		CreatedAt:      now,
		LastAccessedAt: now,
		History:        service.NewHistory(0),
	}
}

func TestFilePersistence_SaveLoad(t *testing.T) {
	fp, dir := newTestPersistence(t)
	original := startedSession(t, "abcd", "quick")

	if err := fp.Save(original); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "abcd.json.zst")); err != nil {
		t.Fatalf("Expected a compressed snapshot on disk: %v", err)
	}
	if !fp.Exists("abcd") {
		t.Error("Expected Exists to report the saved session")
	}

	loaded, err := fp.Load("abcd")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded.ID != "abcd" || loaded.ConfigName != "quick" || len(loaded.Players) != 2 {
		t.Errorf("Unexpected session metadata: %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("Expected creation time %v, got %v", original.CreatedAt, loaded.CreatedAt)
	}
	if loaded.Engine.Seed() != 42 || loaded.History == nil {
		t.Error("Expected the seed and a fresh history")
	}

	want, got := original.Engine.State(), loaded.Engine.State()
	if got.Turn != want.Turn || got.CurrentPlayerIndex != want.CurrentPlayerIndex || !got.Started {
		t.Errorf("Expected turn %d player %d, got turn %d player %d", want.Turn, want.CurrentPlayerIndex, got.Turn, got.CurrentPlayerIndex)
	}
	if engine.TotalMoney(got) != engine.TotalMoney(want) {
		t.Errorf("Expected %d in circulation, got %d", engine.TotalMoney(want), engine.TotalMoney(got))
	}
	if len(got.Log) != len(want.Log) {
		t.Errorf("Expected %d log entries, got %d", len(want.Log), len(got.Log))
	}
}

func TestFilePersistence_EntropyResumes(t *testing.T) {
	fp, _ := newTestPersistence(t)
	original := startedSession(t, "dice", "classic")
	if err := fp.Save(original); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	loaded, err := fp.Load("dice")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	roll := engine.NewIntent(engine.IntentRollDice, nil)
	for i := 0; i < 3; i++ {
		a := original.Engine.Dispatch(roll)
		b := loaded.Engine.Dispatch(roll)
		if len(a.Dice) != len(b.Dice) {
			t.Fatalf("Expected the same dice count, got %v and %v", a.Dice, b.Dice)
		}
		for j := range a.Dice {
			if a.Dice[j] != b.Dice[j] {
				t.Fatalf("Expected a restored session to roll %v, got %v", a.Dice, b.Dice)
			}
		}
		if a.Phase != b.Phase {
			t.Fatalf("Expected phase %s, got %s", a.Phase, b.Phase)
		}
	}
}

func TestFilePersistence_ListAllAndDelete(t *testing.T) {
	fp, dir := newTestPersistence(t)
	for _, id := range []string{"s1", "s2"} {
		if err := fp.Save(startedSession(t, id, "quick")); err != nil {
			t.Fatalf("Failed to save %s: %v", id, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, err := fp.ListAll()
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s2" {
		t.Errorf("Expected [s1 s2], got %v", ids)
	}

	if err := fp.Delete("s1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if fp.Exists("s1") {
		t.Error("Expected s1 to be gone")
	}
	if err := fp.Delete("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestFilePersistence_LoadErrors(t *testing.T) {
	fp, dir := newTestPersistence(t)

	if _, err := fp.Load("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "junk.json.zst"), []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := fp.Load("junk"); err == nil {
		t.Error("Expected a corrupt snapshot to fail")
	}

	orphan := startedSession(t, "orphan", "quick")
	orphan.ConfigName = "retired"
	if err := fp.Save(orphan); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if _, err := fp.Load("orphan"); !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("Expected a missing board to surface ErrConfigNotFound, got %v", err)
	}

	if err := fp.Save(nil); err == nil {
		t.Error("Expected saving nil to fail")
	}
}
