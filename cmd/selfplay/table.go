package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/statecraft/game/engine"
	"github.com/wricardo/statecraft/game/service"
)

// Table is where a game is played: an in-process engine or a running server
type Table interface {
	Start(ctx context.Context) (*engine.WorldState, error)
	Dispatch(ctx context.Context, in engine.Intent) (*engine.WorldState, error)
	Close(ctx context.Context) error
}

// localTable drives an engine directly
type localTable struct {
	engine *engine.GameEngine
}

func newLocalTable(board *engine.GameConfig, players []engine.PlayerSpec, seed uint64) (*localTable, error) {
	eng, err := engine.NewEngineWithSeed(board, players, seed)
	if err != nil {
		return nil, err
	}
	return &localTable{engine: eng}, nil
}

func (t *localTable) Start(ctx context.Context) (*engine.WorldState, error) {
	return t.engine.Dispatch(engine.NewIntent(engine.IntentStartGame, nil)), nil
}

func (t *localTable) Dispatch(ctx context.Context, in engine.Intent) (*engine.WorldState, error) {
	return t.engine.Dispatch(in), nil
}

func (t *localTable) Close(ctx context.Context) error { return nil }

// remoteTable plays one session through the REST API
type remoteTable struct {
	baseURL   string
	client    *http.Client
	sessionID string
	keep      bool
}

func newRemoteTable(ctx context.Context, baseURL, board string, players []engine.PlayerSpec, keep bool) (*remoteTable, error) {
	t := &remoteTable{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		keep:    keep,
	}
	var session service.SessionInfo
	body := map[string]any{"config_id": board, "players": players}
	if err := t.call(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	t.sessionID = session.ID
	return t, nil
}

func (t *remoteTable) Start(ctx context.Context) (*engine.WorldState, error) {
	return t.Dispatch(ctx, engine.NewIntent(engine.IntentStartGame, nil))
}

func (t *remoteTable) Dispatch(ctx context.Context, in engine.Intent) (*engine.WorldState, error) {
	var result service.DispatchResult
	if err := t.call(ctx, http.MethodPost, "/api/sessions/"+t.sessionID+"/intents", in, &result); err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", in.Type, err)
	}
	if result.GameState == nil {
		return nil, fmt.Errorf("dispatch %s: no state returned", in.Type)
	}
	return result.GameState, nil
}

func (t *remoteTable) Close(ctx context.Context) error {
	if t.keep || t.sessionID == "" {
		return nil
	}
	return t.call(ctx, http.MethodDelete, "/api/sessions/"+t.sessionID, nil, nil)
}

// call sends one request, backing off while the server rate-limits intents
func (t *remoteTable) call(ctx context.Context, method, path string, body, result any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.client.Do(req)
		if err != nil {
			return err
		}
		payload, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests && attempt < 50 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("%s - %s", resp.Status, strings.TrimSpace(string(payload)))
		}
		if result == nil {
			return nil
		}
		return json.Unmarshal(payload, result)
	}
}
