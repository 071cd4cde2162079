package logs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInit_ConsoleAndFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "statecraft.log")

	if err := Init("test", Config{Level: "debug", File: file, Console: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { logger = zap.NewNop() })

	Info("session created", zap.String("session", "ab12"))
	Debug("intent dispatched", zap.String("intent", "ROLL_DICE"))
	_ = Sync()

	if !strings.Contains(buf.String(), "session created") || !strings.Contains(buf.String(), "ROLL_DICE") {
		t.Errorf("Expected both lines on the console, got %q", buf.String())
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("Expected a log file, got %v", err)
	}
	if !strings.Contains(string(data), `"session":"ab12"`) {
		t.Errorf("Expected JSON fields in the file, got %q", data)
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	if err := Init("test", Config{Level: "warn", Console: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { logger = zap.NewNop() })

	Info("hidden")
	Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected only warn and above, got %q", buf.String())
	}
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := Init("test", Config{Level: "loud", Console: &buf}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { logger = zap.NewNop() })

	Debug("quiet")
	Info("normal")
	if strings.Contains(buf.String(), "quiet") || !strings.Contains(buf.String(), "normal") {
		t.Errorf("Expected info level, got %q", buf.String())
	}
}
