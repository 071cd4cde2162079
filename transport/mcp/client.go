package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/service"
)

// Client is a thin MCP server that proxies every tool to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Statecraft",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Statecraft - MCP Interface

A political property-trading board game. Every action is an intent sent to a
session; the game decides whether it applies and logs why when it does not.

AVAILABLE TOOLS:
- create_session: start a session on a board with 2-8 players
- list_sessions / get_session: find sessions
- list_configs: available boards
- game_state: the world as one player sees it
- dispatch_intent: send any intent (ROLL_DICE, MOVE_TOKEN, BUY_PROPERTY, PLACE_BID, ...)
- undo / redo: step back or forward across turn hand-overs
- game_log: paged event log, newest first
- describe_tile: one tile with owner, buildings and the rent it would charge now
- game_rules: turn flow, regimes and the intent catalogue

Always pass your own player id as viewer so you see your role.`),
	)
	c.registerTools()
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func numberProp(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session. players is a comma-separated list of player ids, each optionally followed by :role (e.g. \"ana,ben:dealer\").",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"config_id": stringProp("Board to play on (optional, defaults to classic)"),
				"players":   stringProp("Comma-separated player ids with optional :role"),
			},
			Required: []string{"players"},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{"session_id": stringProp("Session ID to retrieve")},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current world as seen by a player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": stringProp("Session ID"),
				"viewer":     stringProp("Your player id; omit for the public view"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "dispatch_intent",
		Description: "Send one intent to the game. See game_rules for the catalogue and payload fields.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": stringProp("Session ID"),
				"type":       stringProp("Intent type, e.g. ROLL_DICE"),
				"payload": map[string]any{
					"type":        "object",
					"description": "Intent payload, e.g. {\"player\": \"ana\", \"amount\": 120}",
				},
				"reason": stringProp("Why you are taking this action (kept out of the game)"),
			},
			Required: []string{"session_id", "type"},
		},
	}, c.handleDispatch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "undo",
		Description: "Restore the world from before the last hand-over of play",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": stringProp("Session ID"),
				"viewer":     stringProp("Your player id"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleUndo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "redo",
		Description: "Reverse the last undo",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": stringProp("Session ID"),
				"viewer":     stringProp("Your player id"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRedo)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_log",
		Description: "Page through the event log, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": stringProp("Session ID"),
				"page":       numberProp("Page number (default 1)"),
				"limit":      numberProp("Entries per page (default 20, max 100)"),
				"kind":       stringProp("Only entries of this kind: info, denied, policy, money, debt, regime, mint, auction, trade"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameLog)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Describe one tile: type, owner, buildings and the rent it would charge right now",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"session_id": stringProp("Session ID"),
				"tile":       numberProp("Tile index on the board"),
			},
			Required: []string{"session_id", "tile"},
		},
	}, c.handleDescribeTile)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available boards",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_rules",
		Description: "Get the rules, turn flow and the intent catalogue",
		InputSchema: mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}},
	}, c.handleGameRules)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// parsePlayers reads "ana,ben:dealer" into seats
func parsePlayers(raw string) []engine.PlayerSpec {
	var seats []engine.PlayerSpec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, role, _ := strings.Cut(part, ":")
		seats = append(seats, engine.PlayerSpec{ID: id, Name: id, Role: engine.Role(role)})
	}
	return seats
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]any{
		"config_id": stringArg(args, "config_id"),
		"players":   parsePlayers(stringArg(args, "players")),
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created session: %s\nBoard: %s\nSeats: %s\nNext: dispatch START_GAME.\n",
		session.ID, session.ConfigName, seatList(session.Players))), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Board: %s, Seats: %s, Created: %s)\n",
			s.ID, s.ConfigName, seatList(s.Players), s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(arguments(request), "session_id")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path := fmt.Sprintf("/api/sessions/%s/state?viewer=%s",
		url.PathEscape(stringArg(args, "session_id")), url.QueryEscape(stringArg(args, "viewer")))

	var state engine.WorldState
	if err := c.apiCall(ctx, "GET", path, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatWorld(&state, stringArg(args, "viewer"))), nil
}

func (c *Client) handleDispatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := stringArg(args, "session_id")
	payload, _ := args["payload"].(map[string]any)
	in := engine.NewIntent(strings.ToUpper(stringArg(args, "type")), payload)

	var result service.DispatchResult
	if err := c.apiCall(ctx, "POST", "/api/sessions/"+url.PathEscape(sessionID)+"/intents", in, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatDispatchResult(in, &result)), nil
}

func (c *Client) handleUndo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.travel(ctx, request, "undo")
}

func (c *Client) handleRedo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.travel(ctx, request, "redo")
}

func (c *Client) travel(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	args := arguments(request)
	viewer := stringArg(args, "viewer")
	path := fmt.Sprintf("/api/sessions/%s/%s?viewer=%s", url.PathEscape(stringArg(args, "session_id")), action, url.QueryEscape(viewer))

	var response struct {
		State *engine.WorldState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if response.State == nil {
		return mcp.NewToolResultError("no state returned"), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s applied.\n\n%s", strings.ToUpper(action[:1])+action[1:], formatWorld(response.State, viewer))), nil
}

func (c *Client) handleGameLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	query := url.Values{}
	if page, ok := intArg(args, "page"); ok && page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit, ok := intArg(args, "limit"); ok && limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if kind := stringArg(args, "kind"); kind != "" {
		query.Set("kind", kind)
	}

	var log service.LogResponse
	path := "/api/sessions/" + url.PathEscape(stringArg(args, "session_id")) + "/log?" + query.Encode()
	if err := c.apiCall(ctx, "GET", path, nil, &log); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatLog(&log)), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	tileID, ok := intArg(args, "tile")
	if !ok {
		return mcp.NewToolResultError("tile must be a number"), nil
	}

	var state engine.WorldState
	if err := c.apiCall(ctx, "GET", "/api/sessions/"+url.PathEscape(stringArg(args, "session_id"))+"/state", nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tileID < 0 || tileID >= len(state.Tiles) {
		return mcp.NewToolResultError(fmt.Sprintf("tile %d is off the board (0-%d)", tileID, len(state.Tiles)-1)), nil
	}
	return mcp.NewToolResultText(formatTile(&state, tileID)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Boards:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%d tiles, %d starting money, %s)\n",
			cfg.ConfigID, cfg.Description, cfg.Tiles, cfg.StartingMoney, cfg.Regime)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rules), nil
}

const rules = `STATECRAFT RULES

Goal: be the last player standing. A player who cannot pay a debt may
mortgage, sell buildings or declare bankruptcy.

TURN FLOW
1. ROLL_DICE                    roll two dice (three while boosted); PAY_BAIL when jailed
2. MOVE_TOKEN                   walk the rolled steps; reroute tiles offer CHOOSE_HOP / SKIP_HOP
3. On landing: BUY_PROPERTY or DECLINE_PROPERTY (declined tiles go to auction),
   PLACE_WAGER then MINIGAME_RESULT on casino and slots tiles, PAY_DEBT when short
4. END_TURN                     only once rolled, with no debt and no open auction

REGIMES
The government changes every few turns, by election or decree. Each regime
sets tax, welfare, interest, rent surcharge, whether trading is legal and how
building shortages are handled. Elections open with CAST_VOTE and close with
CLOSE_ELECTION.

AUCTIONS
START_AUCTION, LIST_SHARES and LIST_OPTION open an auction. Bidders use
PLACE_BID and WITHDRAW_BID. The auction closes when its timer runs out; an
auction with no bids goes to the state.

PROPERTY
MORTGAGE, UNMORTGAGE, BUILD_HOUSE, SELL_HOUSE, SELL_TO_STATE, REPAIR,
WRITE_OPTION, EXERCISE_OPTION. Building needs the whole colour group.

TRADE
PROPOSE_TRADE {to, give_money, take_money, give_tiles, take_tiles, give_shares, take_shares},
then ACCEPT_TRADE or REJECT_TRADE by the recipient, CLOSE_TRADE by the proposer.

MARKET AND ROLES
BUY_SHARES and SELL_SHARES {company, count}. Roles are secret: dealers sell
contraband (BUY_CONTRABAND, USE_CONTRABAND), saboteurs break buildings
(SABOTAGE), officials skim the corruption pot (CLAIM_CORRUPTION), and anyone
may hide money with DEPOSIT_OFFSHORE and WITHDRAW_OFFSHORE where allowed.

Payload fields: player, amount, tile, company, count, regime, steps,
sealed, strike, turns, option, dealer, outcome, to.
player defaults to the current player where that makes sense.`

func seatList(players []engine.PlayerSpec) string {
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return strings.Join(ids, ", ")
}

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nBoard: %s\nSeed: %d\nSeats: %s\nCreated: %s\nLast Accessed: %s\nUndo: %v Redo: %v\n",
		session.ID, session.ConfigName, session.Seed, seatList(session.Players),
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339),
		session.CanUndo, session.CanRedo)
	if session.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatWorld(session.GameState, ""))
	}
	return b.String()
}

func formatWorld(w *engine.WorldState, viewer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turn %d, phase %s, regime %s (%d turns left), weather %s\n",
		w.Turn, w.Phase, w.Regime, w.RegimeTurnsLeft, w.Weather)
	fmt.Fprintf(&b, "Treasury %d, corruption pot %d, bank %d houses / %d hotels\n",
		w.Treasury, w.CorruptionPot, w.Bank.Houses, w.Bank.Hotels)
	if w.Winner != "" {
		fmt.Fprintf(&b, "WINNER: %s\n", w.Winner)
	}

	b.WriteString("\nPlayers:\n")
	for i, p := range w.Players {
		marker := " "
		if w.Started && i == w.CurrentPlayerIndex {
			marker = ">"
		}
		status := ""
		if !p.Alive {
			status = " (bankrupt)"
		} else if p.JailTurns > 0 {
			status = fmt.Sprintf(" (jailed %d)", p.JailTurns)
		}
		fmt.Fprintf(&b, "%s %s: %d cash on %s, %d tiles, role %s%s\n",
			marker, p.ID, p.Money, tileName(w, p.Position), len(p.Owned), p.Role, status)
		if p.ID == viewer && viewer != "" {
			fmt.Fprintf(&b, "    offshore %d, contraband %d, addiction %d\n", p.Offshore, p.Contraband, p.Addiction)
		}
	}

	if len(w.Dice) > 0 {
		fmt.Fprintf(&b, "\nDice: %v, pending moves %d\n", w.Dice, w.PendingMoves)
	}
	if len(w.MovementOptions) > 0 {
		fmt.Fprintf(&b, "Hop options: %v\n", w.MovementOptions)
	}
	if w.PendingPurchase != nil {
		t := w.Tile(*w.PendingPurchase)
		fmt.Fprintf(&b, "Pending purchase: %s for %d\n", t.Name, t.Price)
	}
	if w.Debt != nil {
		fmt.Fprintf(&b, "Debt: %s owes %s %d (%s)\n", w.Debt.Debtor, w.Debt.Creditor, w.Debt.Amount, w.Debt.Reason)
	}
	for _, d := range w.Debts {
		fmt.Fprintf(&b, "Queued debt: %s owes %s %d (%s)\n", d.Debtor, d.Creditor, d.Amount, d.Reason)
	}
	if a := w.Auction; a != nil {
		fmt.Fprintf(&b, "Auction %s (%s): high bid %d by %q, %d ticks left\n", a.ID, a.Kind, a.HighBid, a.HighBidder, a.TicksLeft)
	}
	if tr := w.Trade; tr != nil {
		fmt.Fprintf(&b, "Trade %s: %s -> %s\n", tr.ID, tr.From, tr.To)
	}
	if e := w.Election; e != nil && e.Open {
		fmt.Fprintf(&b, "Election open, voted: %s\n", strings.Join(e.Voted, ", "))
	}

	if len(w.Log) > 0 {
		b.WriteString("\nRecent log:\n")
		for i := 0; i < len(w.Log) && i < 5; i++ {
			fmt.Fprintf(&b, "  [%d %s] %s\n", w.Log[i].Turn, w.Log[i].Kind, w.Log[i].Message)
		}
	}
	return b.String()
}

func tileName(w *engine.WorldState, id int) string {
	if t := w.Tile(id); t != nil {
		return fmt.Sprintf("%s (%d)", t.Name, id)
	}
	return strconv.Itoa(id)
}

func formatDispatchResult(in engine.Intent, result *service.DispatchResult) string {
	var b strings.Builder
	switch {
	case !result.Applied:
		fmt.Fprintf(&b, "%s had no effect.\n", in.Type)
	case result.Rejected:
		fmt.Fprintf(&b, "%s was refused: %s\n", in.Type, result.Reason)
	default:
		fmt.Fprintf(&b, "%s applied.\n", in.Type)
	}
	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, e := range result.Events {
			fmt.Fprintf(&b, "  [%s] %s\n", e.Type, e.Message)
		}
	}
	if result.GameState != nil {
		b.WriteString("\n")
		b.WriteString(formatWorld(result.GameState, ""))
	}
	return b.String()
}

func formatLog(log *service.LogResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Log page %d/%d (%d entries)\n\n", log.Page, log.TotalPages, log.Total)
	for _, e := range log.Entries {
		fmt.Fprintf(&b, "[turn %d, %s] %s\n", e.Turn, e.Kind, e.Message)
	}
	if log.HasNext {
		fmt.Fprintf(&b, "\nMore on page %d.\n", log.Page+1)
	}
	return b.String()
}

func formatTile(w *engine.WorldState, id int) string {
	t := w.Tile(id)
	var b strings.Builder
	fmt.Fprintf(&b, "Tile %d: %s (%s)\n", t.ID, t.Name, t.Type)
	if t.Group != "" {
		fmt.Fprintf(&b, "Group: %s\n", t.Group)
	}
	if t.Type == engine.TileTax {
		fmt.Fprintf(&b, "Tax: %d\n", t.TaxAmount)
	}
	if !t.Type.Purchasable() {
		return b.String()
	}

	fmt.Fprintf(&b, "Price: %d, house cost %d, rent table %v\n", t.Price, t.HouseCost, t.Rent)
	switch t.Owner.Kind {
	case engine.OwnerPlayer:
		fmt.Fprintf(&b, "Owner: %s\n", t.Owner.PlayerID)
	case engine.OwnerState:
		b.WriteString("Owner: the state\n")
	case engine.OwnerEscrow:
		b.WriteString("Owner: in escrow\n")
	default:
		b.WriteString("Owner: none\n")
	}
	fmt.Fprintf(&b, "Houses: %d, hotel: %v, mortgaged: %v, broken: %v\n", t.Houses, t.Hotel, t.Mortgaged, t.Broken)
	switch t.OccupiedBy {
	case "":
	case string(engine.RoleHidden):
		fmt.Fprintf(&b, "Occupied by squatters, eviction in %d turns\n", t.EvictionTimer)
	default:
		fmt.Fprintf(&b, "Occupied by %s, eviction in %d turns\n", t.OccupiedBy, t.EvictionTimer)
	}

	quote := engine.QuoteRent(w, id, 7)
	fmt.Fprintf(&b, "Rent now: %d", quote.Total())
	if quote.Surcharge > 0 {
		fmt.Fprintf(&b, " (base %d + surcharge %d)", quote.Base, quote.Surcharge)
	}
	if quote.Reason != "" {
		fmt.Fprintf(&b, " - %s", quote.Reason)
	}
	b.WriteString("\n")

	var holders []string
	for _, o := range w.Options {
		if o.TileID == id {
			holders = append(holders, fmt.Sprintf("%s held by %s at %d", o.ID, o.Holder, o.Strike))
		}
	}
	sort.Strings(holders)
	if len(holders) > 0 {
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(holders, "; "))
	}
	return b.String()
}
