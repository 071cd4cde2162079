// Command statecraft starts the Statecraft game server.
//
// It supports two modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, the
//     WebSocket feed and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server against a running API, or starts an
//     internal one on a loopback port when none answers
//
// Every flag can also be set from the environment or a .env file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/statecraft/api"
	"github.com/wricardo/statecraft/game/config"
	"github.com/wricardo/statecraft/game/journal"
	"github.com/wricardo/statecraft/game/logs"
	"github.com/wricardo/statecraft/game/service"
	"github.com/wricardo/statecraft/game/session"
	"github.com/wricardo/statecraft/transport/mcp"
	"github.com/wricardo/statecraft/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Statecraft Server"
)

// serverOptions is everything the flags decide
type serverOptions struct {
	Host        string
	Port        int
	ConfigDir   string
	SessionsDir string
	JournalDir  string
	AuctionTick time.Duration
	IntentRate  float64
	IntentBurst int
	SessionTTL  time.Duration
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func (o serverOptions) addr() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// services holds the wired game stack
type services struct {
	configs  *config.Manager
	sessions *session.Manager
	journal  *journal.Writer
	game     service.GameService
}

// buildServices wires configs, sessions, the journal and the game service.
// Empty SessionsDir or JournalDir turn persistence or journaling off.
func buildServices(opts serverOptions, logger *zap.Logger) (*services, error) {
	configs, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessions := session.NewManager()
	if opts.SessionsDir != "" {
		persistence, err := session.NewFilePersistence(opts.SessionsDir, configs)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		sessions = session.NewManagerWithPersistence(persistence)
	}
	sessions.WithLogger(logger.Named("sessions"))

	if err := sessions.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}

	svcOpts := []service.Option{service.WithLogger(logger.Named("service"))}
	var writer *journal.Writer
	if opts.JournalDir != "" {
		writer, err = journal.NewWriter(opts.JournalDir, logger.Named("journal"))
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		svcOpts = append(svcOpts, service.WithRecorder(writer))
		logger.Info("journaling intents", zap.String("dir", opts.JournalDir), zap.String("run", writer.Run()))
	}

	return &services{
		configs:  configs,
		sessions: sessions,
		journal:  writer,
		game:     service.NewGameService(sessions, configs, svcOpts...),
	}, nil
}

// Close flushes the journal and saves every session
func (s *services) Close() error {
	var errs []error
	if err := s.sessions.SaveAllSessions(); err != nil {
		errs = append(errs, err)
	}
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newHandler mounts the API at the root and the MCP tools at /mcp
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		}
	})
	return mux
}

// runServer serves HTTP until ctx is cancelled, with the auction clock,
// the WebSocket hub and an optional ngrok tunnel running alongside
func runServer(ctx context.Context, opts serverOptions, logger *zap.Logger) error {
	svcs, err := buildServices(opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svcs.Close(); err != nil {
			logger.Warn("shutdown flush failed", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	spawn := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	hub := websocket.NewHub(logger.Named("hub"))
	spawn(func() { hub.Run(ctx) })

	clock := service.NewAuctionClock(svcs.game, opts.AuctionTick, func(res service.TickResult) {
		hub.BroadcastState(res.SessionID, res.World)
	}, logger.Named("clock"))
	spawn(func() { clock.Run(ctx) })

	if opts.SessionTTL > 0 {
		spawn(func() { sessionCleanupRoutine(ctx, svcs.sessions, opts.SessionTTL) })
	}

	apiOpts := []api.Option{api.WithLogger(logger.Named("api"))}
	if opts.IntentRate > 0 {
		apiOpts = append(apiOpts, api.WithIntentRate(opts.IntentRate, opts.IntentBurst))
	}
	addr := opts.addr()
	handler := newHandler(api.NewServer(svcs.game, hub, apiOpts...), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	spawn(func() {
		logger.Info("HTTP server listening",
			zap.String("api", "http://"+addr+"/api"),
			zap.String("ws", "ws://"+addr+"/ws?session=<id>&player=<id>"),
			zap.String("mcp", "http://"+addr+"/mcp"))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	})

	if opts.Ngrok {
		spawn(func() { serveNgrok(ctx, opts, handler, logger.Named("ngrok")) })
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-serveErr:
		logger.Error("HTTP server failed", zap.Error(err))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(serr))
	}

	wg.Wait()
	logger.Info("server stopped")
	return err
}

// serveNgrok exposes handler through an ngrok tunnel until ctx ends
func serveNgrok(ctx context.Context, opts serverOptions, handler http.Handler, logger *zap.Logger) {
	if opts.NgrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	url := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("api", url+"/api"),
		zap.String("mcp", url+"/mcp"))

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("ngrok server error", zap.Error(err))
	}
}

// sessionCleanupRoutine drops sessions idle for longer than ttl from memory
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.CleanupExpiredSessions(ttl)
		}
	}
}

// apiAvailable reports whether a Statecraft API answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := (&http.Client{Timeout: 2 * time.Second}).Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// startInternalAPI serves the API on a random loopback port and returns its URL
func startInternalAPI(ctx context.Context, opts serverOptions, logger *zap.Logger) (string, func(), error) {
	svcs, err := buildServices(opts, logger)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = svcs.Close()
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	hub := websocket.NewHub(logger.Named("hub"))
	go hub.Run(ctx)
	clock := service.NewAuctionClock(svcs.game, opts.AuctionTick, func(res service.TickResult) {
		hub.BroadcastState(res.SessionID, res.World)
	}, logger.Named("clock"))
	go clock.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(svcs.game, hub, api.WithLogger(logger.Named("api")))}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("internal HTTP server error", zap.Error(err))
		}
	}()

	stop := func() {
		cancel()
		_ = httpServer.Close()
		if err := svcs.Close(); err != nil {
			logger.Warn("shutdown flush failed", zap.Error(err))
		}
	}
	return "http://" + listener.Addr().String(), stop, nil
}

// runMCP serves the MCP tools over stdio. It proxies apiURL when that API
// answers and an internal API otherwise.
func runMCP(ctx context.Context, opts serverOptions, apiURL string, logger *zap.Logger) error {
	baseURL := apiURL
	if !apiAvailable(ctx, apiURL) {
		logger.Info("no API server found, starting an internal one", zap.String("tried", apiURL))
		internal, stop, err := startInternalAPI(ctx, opts, logger)
		if err != nil {
			return err
		}
		defer stop()
		baseURL = internal
	}

	logger.Info("MCP stdio server ready", zap.String("api", baseURL))
	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}

func optionsFrom(cmd *cli.Command) serverOptions {
	return serverOptions{
		Host:        cmd.String("host"),
		Port:        cmd.Int("port"),
		ConfigDir:   cmd.String("config-dir"),
		SessionsDir: cmd.String("sessions-dir"),
		JournalDir:  cmd.String("journal-dir"),
		AuctionTick: cmd.Duration("auction-tick"),
		IntentRate:  cmd.Float("intent-rate"),
		IntentBurst: cmd.Int("intent-burst"),
		SessionTTL:  cmd.Duration("session-ttl"),
		Ngrok:       cmd.Bool("ngrok"),
		NgrokAuth:   cmd.String("ngrok-auth"),
		NgrokDomain: cmd.String("ngrok-domain"),
	}
}

// setup initializes the logger before any command runs
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	return ctx, logs.Init("statecraft", logs.Config{
		Level: cmd.String("log-level"),
		File:  cmd.String("log-file"),
		Dev:   cmd.Bool("debug"),
	})
}

func serverAction(ctx context.Context, cmd *cli.Command) error {
	defer logs.Sync()
	logs.Info("starting", zap.String("app", AppName), zap.String("version", Version))
	return runServer(ctx, optionsFrom(cmd), logs.L())
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "statecraft",
		Usage:   "multiplayer property game server with regimes, auctions and roles",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory of board configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "session snapshots; empty keeps sessions in memory", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "journal-dir", Value: "journal", Usage: "intent journal; empty disables it", Sources: cli.EnvVars("JOURNAL_DIR")},
			&cli.DurationFlag{Name: "auction-tick", Value: service.DefaultTickInterval, Usage: "wall-clock length of one auction tick", Sources: cli.EnvVars("AUCTION_TICK")},
			&cli.FloatFlag{Name: "intent-rate", Value: 20, Usage: "intents per second per session; 0 disables limiting", Sources: cli.EnvVars("INTENT_RATE")},
			&cli.IntFlag{Name: "intent-burst", Value: 40, Usage: "intent burst per session", Sources: cli.EnvVars("INTENT_BURST")},
			&cli.DurationFlag{Name: "session-ttl", Value: 24 * time.Hour, Usage: "drop idle sessions from memory after this long", Sources: cli.EnvVars("SESSION_TTL")},
			&cli.StringFlag{Name: "log-level", Value: "info", Sources: cli.EnvVars("LOG_LEVEL")},
			&cli.StringFlag{Name: "log-file", Usage: "also write JSON logs to this rotating file", Sources: cli.EnvVars("LOG_FILE")},
			&cli.BoolFlag{Name: "debug", Usage: "development logging with stack traces", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: setup,
		Action: serverAction,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action:  serverAction,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api-url", Value: "http://localhost:8080", Usage: "API to proxy; an internal one starts when it does not answer", Sources: cli.EnvVars("STATECRAFT_API_URL")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					defer logs.Sync()
					return runMCP(ctx, optionsFrom(cmd), cmd.String("api-url"), logs.L())
				},
			},
		},
	}
}

func main() {
	// .env feeds the flag sources, so it loads before parsing
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
