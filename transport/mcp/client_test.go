package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/statecraft/api"
	"github.com/wricardo/statecraft/game/config"
	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/service"
	"github.com/wricardo/statecraft/game/session"
)

func request(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// newBackedClient runs the real REST API over the repository boards
func newBackedClient(t *testing.T) *Client {
	t.Helper()
	configs, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)
	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL)
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON body, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"echo": body["ping"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	var response map[string]string
	if err := client.apiCall(context.Background(), "POST", "/api", map[string]string{"ping": "pong"}, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["echo"] != "pong" {
		t.Errorf("Expected echo pong, got %v", response)
	}
}

func TestClient_apiCall_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	if err := client.apiCall(ctx, "GET", "/json", nil, nil); err == nil || err.Error() != "session not found" {
		t.Errorf("Expected API error message, got %v", err)
	}
	if err := client.apiCall(ctx, "GET", "/plain", nil, nil); err == nil || !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status code in error, got %v", err)
	}
	if err := NewClient("http://127.0.0.1:1").apiCall(ctx, "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestParsePlayers(t *testing.T) {
	seats := parsePlayers(" ana , ben:dealer,,cy:official ")
	if len(seats) != 3 {
		t.Fatalf("Expected 3 seats, got %d", len(seats))
	}
	if seats[0].ID != "ana" || seats[0].Role != "" {
		t.Errorf("Unexpected first seat %+v", seats[0])
	}
	if seats[1].ID != "ben" || seats[1].Role != engine.RoleDealer {
		t.Errorf("Unexpected second seat %+v", seats[1])
	}
	if seats[2].Role != engine.RoleOfficial {
		t.Errorf("Unexpected third seat %+v", seats[2])
	}
}

func TestIntArg(t *testing.T) {
	args := map[string]any{"f": float64(3), "i": 4, "s": " 5 ", "bad": "x"}
	for key, want := range map[string]int{"f": 3, "i": 4, "s": 5} {
		if got, ok := intArg(args, key); !ok || got != want {
			t.Errorf("%s: expected %d, got %d (%v)", key, want, got, ok)
		}
	}
	if _, ok := intArg(args, "bad"); ok {
		t.Error("Expected non-numeric string to be rejected")
	}
	if _, ok := intArg(args, "missing"); ok {
		t.Error("Expected missing key to be rejected")
	}
}

func TestClient_handleGameRules(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameRules(context.Background(), request("game_rules", nil))
	if err != nil {
		t.Fatalf("handleGameRules failed: %v", err)
	}
	text := resultText(t, result)
	for _, want := range []string{"TURN FLOW", "REGIMES", "AUCTIONS", "PLACE_BID", "PROPOSE_TRADE", "DEPOSIT_OFFSHORE"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in rules", want)
		}
	}
}

func TestClient_NonObjectArguments(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")

	result, err := client.handleDescribeTile(context.Background(), request("describe_tile", nil))
	if err != nil {
		t.Fatalf("handleDescribeTile failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected an error result without a tile")
	}
}

func TestClient_Integration(t *testing.T) {
	client := newBackedClient(t)
	ctx := context.Background()

	result, err := client.handleCreateSession(ctx, request("create_session", map[string]interface{}{
		"config_id": "classic",
		"players":   "ana:official,ben:dealer",
	}))
	if err != nil {
		t.Fatalf("create_session failed: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("create_session returned an error: %s", text)
	}
	if !strings.Contains(text, "Seats: ana, ben") {
		t.Errorf("Expected seats in result, got: %s", text)
	}
	firstLine, _, _ := strings.Cut(text, "\n")
	sessionID := strings.TrimPrefix(firstLine, "Created session: ")

	result, _ = client.handleListSessions(ctx, request("list_sessions", nil))
	text = resultText(t, result)
	if !strings.Contains(text, "Active Sessions (1)") || !strings.Contains(text, "- "+sessionID+" ") {
		t.Fatalf("Expected the new session listed, got: %s", text)
	}

	result, _ = client.handleDispatch(ctx, request("dispatch_intent", map[string]interface{}{
		"session_id": sessionID,
		"type":       "start_game",
	}))
	text = resultText(t, result)
	if result.IsError || !strings.Contains(text, "START_GAME applied") {
		t.Fatalf("Expected START_GAME to apply, got: %s", text)
	}

	result, _ = client.handleDispatch(ctx, request("dispatch_intent", map[string]interface{}{
		"session_id": sessionID,
		"type":       "BUY_PROPERTY",
		"payload":    map[string]interface{}{"player": "ana"},
	}))
	text = resultText(t, result)
	if strings.Contains(text, "BUY_PROPERTY applied") {
		t.Errorf("Expected a purchase before rolling to be refused, got: %s", text)
	}

	result, _ = client.handleGameState(ctx, request("game_state", map[string]interface{}{
		"session_id": sessionID,
		"viewer":     "ana",
	}))
	text = resultText(t, result)
	if !strings.Contains(text, "role official") {
		t.Errorf("Expected ana to see her own role, got: %s", text)
	}
	if strings.Contains(text, "role dealer") {
		t.Errorf("Expected ben's role hidden from ana, got: %s", text)
	}
	if !strings.Contains(text, "> ana") {
		t.Errorf("Expected ana to be the current player, got: %s", text)
	}

	result, _ = client.handleGameLog(ctx, request("game_log", map[string]interface{}{
		"session_id": sessionID,
		"limit":      float64(5),
	}))
	text = resultText(t, result)
	if result.IsError || !strings.Contains(text, "Log page 1/") {
		t.Errorf("Expected first log page, got: %s", text)
	}

	result, _ = client.handleDescribeTile(ctx, request("describe_tile", map[string]interface{}{
		"session_id": sessionID,
		"tile":       float64(1),
	}))
	text = resultText(t, result)
	if result.IsError || !strings.Contains(text, "Tile 1:") || !strings.Contains(text, "Owner: none") {
		t.Errorf("Expected an unowned tile 1, got: %s", text)
	}

	result, _ = client.handleDescribeTile(ctx, request("describe_tile", map[string]interface{}{
		"session_id": sessionID,
		"tile":       float64(400),
	}))
	if !result.IsError {
		t.Error("Expected an off-board tile to be an error")
	}

	result, _ = client.handleUndo(ctx, request("undo", map[string]interface{}{"session_id": sessionID}))
	if !result.IsError {
		t.Errorf("Expected nothing to undo before a hand-over, got: %s", resultText(t, result))
	}

	result, _ = client.handleGetSession(ctx, request("get_session", map[string]interface{}{"session_id": "missing"}))
	if !result.IsError {
		t.Error("Expected missing session to be an error")
	}

	result, _ = client.handleListConfigs(ctx, request("list_configs", nil))
	text = resultText(t, result)
	if !strings.Contains(text, "- classic:") || !strings.Contains(text, "- quick:") {
		t.Errorf("Expected repository boards, got: %s", text)
	}
}

func TestFormatWorld_Winner(t *testing.T) {
	w := &engine.WorldState{
		Turn:    12,
		Phase:   engine.PhaseGameOver,
		Winner:  "ben",
		Players: []engine.Player{{ID: "ben", Money: 900, Alive: true, Role: engine.RoleHidden}},
		Tiles:   []engine.Tile{{ID: 0, Name: "Start", Type: engine.TileStart}},
		Log:     []engine.LogEntry{{Turn: 12, Kind: engine.LogInfo, Message: "ben wins"}},
	}

	text := formatWorld(w, "")
	for _, want := range []string{"WINNER: ben", "Start (0)", "[12 info] ben wins"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in %s", want, text)
		}
	}
}
