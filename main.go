// Command memorygame starts the memory match game server.
//
// It supports three commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "init-config" writes the default game configuration to a file for editing
//
// Settings come from the environment (and .env); flags override them.
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
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/memory-match-game/api"
	"github.com/wricardo/memory-match-game/game/config"
	"github.com/wricardo/memory-match-game/game/engine"
	"github.com/wricardo/memory-match-game/game/leaderboard"
	"github.com/wricardo/memory-match-game/game/service"
	"github.com/wricardo/memory-match-game/game/session"
	"github.com/wricardo/memory-match-game/storage"
	"github.com/wricardo/memory-match-game/storage/bolt"
	"github.com/wricardo/memory-match-game/storage/file"
	"github.com/wricardo/memory-match-game/storage/memory"
	"github.com/wricardo/memory-match-game/storage/sqlite"
	"github.com/wricardo/memory-match-game/transport/mcp"
	"github.com/wricardo/memory-match-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Match Game Server"
)

const defaultConfigFile = "memorygame.json"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("memorygame failed")
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "memorygame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (overrides HOST)"},
			&cli.StringFlag{Name: "port", Usage: "HTTP server port (overrides PORT)"},
			&cli.StringFlag{Name: "config", Usage: "game configuration file (overrides CONFIG_FILE)"},
			&cli.StringFlag{Name: "store", Usage: "ledger backend: file, bolt, sqlite or memory (overrides STORE)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel (overrides NGROK_ENABLED)"},
		},
		DefaultCommand: "server",
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run MCP stdio server, with an internal HTTP server if none is running",
				Action:  runStdioMCP,
			},
			{
				Name:      "init-config",
				Usage:     "write the default game configuration to a file",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: runInitConfig,
			},
		},
	}
}

// loadSettings reads .env and the environment, applies flag overrides and
// configures logging.
func loadSettings(cmd *cli.Command) (config.Settings, error) {
	loaded, err := config.LoadDotEnv()
	if err != nil {
		return config.Settings{}, fmt.Errorf("load .env: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return config.Settings{}, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = cmd.String("port")
	}
	if cmd.IsSet("config") {
		settings.ConfigFile = cmd.String("config")
	}
	if cmd.IsSet("store") {
		settings.Store = cmd.String("store")
	}
	if cmd.Bool("ngrok") {
		settings.NgrokEnabled = true
	}

	setupLogging(settings.LogLevel, cmd.Bool("debug"))
	if loaded {
		log.Debug().Msg("loaded environment variables from .env file")
	}
	return settings, nil
}

// setupLogging sets the global level. Logs go to stderr so stdio MCP keeps
// stdout to itself.
func setupLogging(level string, debug bool) {
	if debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// openStore opens the key-value backend that holds the leaderboard
func openStore(kind, path string) (storage.Store, error) {
	switch kind {
	case "memory":
		return memory.New(), nil
	case "file":
		return file.Open(path)
	case "bolt":
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
		return bolt.Open(filepath.Join(path, "memorygame.db"))
	case "sqlite":
		return sqlite.Open(filepath.Join(path, "memorygame.sqlite"))
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

// services holds everything a running server owns
type services struct {
	game     service.GameService
	configs  *config.Manager
	sessions *session.Manager
	hub      *websocket.Hub
	store    storage.Store
}

// Close stops sessions and the hub, then closes the store
func (s *services) Close() {
	s.sessions.Close()
	s.hub.Stop()
	if err := s.store.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close store")
	}
}

// initializeServices wires config, storage, leaderboard, sessions and the
// game service.
func initializeServices(ctx context.Context, settings config.Settings) (*services, error) {
	configManager, err := config.NewManager(settings.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	store, err := openStore(settings.Store, settings.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", settings.Store, err)
	}

	book := leaderboard.Open(ctx, leaderboard.NewKVStore(store, settings.LedgerKey))

	hub := websocket.NewHub()
	go hub.Run()

	sessionManager := session.NewManager(session.Options{
		Notifier: hub,
		Recorder: book,
	})

	cfg := configManager.GetDefault()
	log.Info().
		Str("config", cfg.Name).
		Str("config_file", configManager.Path()).
		Int("rows", cfg.Rows).
		Int("cols", cfg.Cols).
		Int("duration", cfg.DurationSeconds).
		Str("store", settings.Store).
		Msg("services initialized")

	return &services{
		game:     service.NewGameService(sessionManager, configManager, book),
		configs:  configManager,
		sessions: sessionManager,
		hub:      hub,
		store:    store,
	}, nil
}

// cleanupInterval is how often expired sessions are pruned for a given TTL
func cleanupInterval(ttl time.Duration) time.Duration {
	interval := time.Hour
	if ttl/2 < interval {
		interval = ttl / 2
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(cleanupInterval(ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		case <-ctx.Done():
			return
		}
	}
}

// reloadOnSignal re-reads the game configuration each time sig fires.
// Sessions created afterwards use the new board; a bad file keeps the old one.
func reloadOnSignal(ctx context.Context, manager *config.Manager, sig <-chan os.Signal) {
	for {
		select {
		case <-sig:
			if err := manager.Reload(); err != nil {
				log.Error().Err(err).Str("path", manager.Path()).Msg("config reload failed")
				continue
			}
			log.Info().
				Str("path", manager.Path()).
				Str("config", manager.GetDefault().Name).
				Msg("config reloaded")
		case <-ctx.Done():
			return
		}
	}
}

// newHandler mounts the API at the root and the MCP proxy at /mcp
func newHandler(apiServer http.Handler, mcpClient *mcp.Client) http.Handler {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runServer starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. With ngrok enabled it also provisions a public tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := initializeServices(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	addr := settings.Addr()
	handler := newHandler(api.NewServer(svc.game, svc.hub), mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessionCleanupRoutine(ctx, svc.sessions, settings.SessionTTL)
	}()

	go func() {
		log.Info().Str("addr", addr).
			Str("api", "http://"+addr+"/api").
			Str("websocket", "ws://"+addr+"/ws?session=<session_id>").
			Str("mcp", "http://"+addr+"/mcp").
			Msgf("%s v%s listening", AppName, Version)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		reloadOnSignal(ctx, svc.configs, hup)
	}()

	if settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, settings, handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, settings config.Settings, handler http.Handler) {
	if settings.NgrokAuthToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (set NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if settings.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.NgrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.NgrokAuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")
	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// externalServerUp reports whether a game server already answers at baseURL
func externalServerUp(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses a server already running
// at the configured address; otherwise it starts an internal HTTP API on a
// random loopback port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	baseURL := "http://" + settings.Addr()
	if externalServerUp(baseURL) {
		log.Info().Str("url", baseURL).Msg("using external API server for MCP")
	} else {
		svc, err := initializeServices(ctx, settings)
		if err != nil {
			return err
		}
		defer svc.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internal := &http.Server{Handler: api.NewServer(svc.game, svc.hub)}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()
		defer internal.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info().Str("url", baseURL).Msg("started internal HTTP server for MCP stdio")
	}

	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runInitConfig writes the built-in configuration so it can be edited
func runInitConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(path, engine.DefaultGameConfig()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Wrote %s\n", path)
	return nil
}
