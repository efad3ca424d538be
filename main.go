// Command crusade runs the rotating-tile maze solver.
//
// It supports three commands:
//  1. "server" (default) – runs the HTTP server exposing the REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server, spinning up an internal HTTP API if none is reachable
//  3. "play" – answers the turn protocol on stdin/stdout
//
// Flags control host/port, level and session directories, log format, and
// optional ngrok tunneling for external access during development. Every
// flag can also be set from the environment or a .env file.
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
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/crusade/api"
	"github.com/wricardo/crusade/game/config"
	"github.com/wricardo/crusade/game/protocol"
	"github.com/wricardo/crusade/game/service"
	"github.com/wricardo/crusade/game/session"
	"github.com/wricardo/crusade/transport/mcp"
	"github.com/wricardo/crusade/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Last Crusade Solver"
)

const (
	cleanupInterval = time.Hour
	syncInterval    = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("error loading .env file")
		}
	} else {
		log.Debug("loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("crusade failed")
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "crusade",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "levels-dir",
				Value:   "levels",
				Usage:   "Directory containing level files",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.StringFlag{
				Name:    "sessions-dir",
				Value:   "sessions",
				Usage:   "Directory where sessions are persisted",
				Sources: cli.EnvVars("SESSIONS_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-level",
				Usage:   "Level used when a session does not name one",
				Sources: cli.EnvVars("DEFAULT_LEVEL"),
			},
			&cli.DurationFlag{
				Name:    "session-ttl",
				Value:   24 * time.Hour,
				Usage:   "Evict sessions idle for longer than this from memory",
				Sources: cli.EnvVars("SESSION_TTL"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format: text or json",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, configureLogging(cmd.String("log-format"), cmd.Bool("debug"))
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run an MCP stdio server backed by the REST API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "api-url",
						Value:   "http://localhost:8080",
						Usage:   "REST API to proxy; an internal server is started when it is unreachable",
						Sources: cli.EnvVars("CRUSADE_API_URL"),
					},
				},
				Action: runStdioMCP,
			},
			{
				Name:      "play",
				Usage:     "Answer the turn protocol on stdin/stdout",
				ArgsUsage: "[level name]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						name = "stdin"
					}
					root := cmd.Root()
					return protocol.Play(root.Reader, root.Writer, name)
				},
			},
		},
	}
}

// configureLogging sets the logrus formatter and level
func configureLogging(format string, debug bool) error {
	switch format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q, expected text or json", format)
	}

	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return nil
}

// services holds the wired application layers
type services struct {
	levels      *config.Manager
	sessions    *session.Manager
	persistence *session.FilePersistence
	game        service.GameService
}

// initializeServices wires the level and session managers and the game service
func initializeServices(levelsDir, sessionsDir, defaultLevel string) (*services, error) {
	levels, err := config.NewManager(levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}
	if defaultLevel != "" {
		if err := levels.SetDefault(defaultLevel); err != nil {
			return nil, fmt.Errorf("failed to set default level %s: %w", defaultLevel, err)
		}
	}

	persistence, err := session.NewFilePersistence(sessionsDir, levels)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessions := session.NewManagerWithPersistence(persistence)
	if err := sessions.LoadPersistedSessions(); err != nil {
		log.WithError(err).Warn("failed to load persisted sessions")
	}

	return &services{
		levels:      levels,
		sessions:    sessions,
		persistence: persistence,
		game:        service.NewGameService(sessions, levels),
	}, nil
}

func servicesFromFlags(cmd *cli.Command) (*services, error) {
	return initializeServices(cmd.String("levels-dir"), cmd.String("sessions-dir"), cmd.String("default-level"))
}

// newMux combines the REST API with an /mcp JSON-RPC endpoint proxying to it
func newMux(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", apiServer)

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
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

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
	return mux
}

// runServer starts the HTTP server, the WebSocket hub, the level watcher and
// the session maintenance loops. If ngrok is enabled it also serves through
// a public tunnel. Everything stops when ctx is cancelled.
func runServer(ctx context.Context, cmd *cli.Command) error {
	svc, err := servicesFromFlags(cmd)
	if err != nil {
		return err
	}

	hub := websocket.NewHub()
	apiServer := api.NewServer(svc.game, hub)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mainRouter := newMux(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.WithFields(log.Fields{"version": Version, "addr": addr}).Infof("starting %s", AppName)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run()
		return nil
	})

	g.Go(func() error {
		log.WithFields(log.Fields{
			"api":       fmt.Sprintf("http://%s/api", addr),
			"websocket": fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp":       fmt.Sprintf("http://%s/mcp", addr),
		}).Info("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := svc.levels.Watch(gctx); err != nil {
			log.WithError(err).Warn("level hot reload disabled")
		}
		return nil
	})

	g.Go(func() error {
		sessionCleanupLoop(gctx, svc.sessions, cmd.Duration("session-ttl"))
		return nil
	})

	g.Go(func() error {
		filesystemSyncLoop(gctx, svc.sessions, svc.persistence)
		return nil
	})

	if cmd.Bool("ngrok") {
		g.Go(func() error {
			serveNgrok(gctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), mainRouter)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("HTTP server shutdown error")
		}
		hub.Stop()
		if err := svc.sessions.SaveAllSessions(); err != nil {
			log.WithError(err).Warn("failed to save sessions on shutdown")
		}
		return nil
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

// serveNgrok serves handler through an ngrok tunnel until ctx is cancelled
func serveNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.WithField("domain", domain).Info("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	log.Info("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.WithError(err).Error("failed to start ngrok tunnel")
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.WithFields(log.Fields{
		"api":       ngrokURL + "/api",
		"websocket": ngrokURL + "/ws?session=<session_id>",
		"mcp":       ngrokURL + "/mcp",
	}).Infof("ngrok tunnel established: %s", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("ngrok server error")
	}
	log.Info("ngrok tunnel closed")
}

// sessionCleanupLoop periodically evicts sessions that have not been accessed
// within ttl. Persisted copies are kept and reload on the next access.
func sessionCleanupLoop(ctx context.Context, manager *session.Manager, ttl time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.WithField("count", removed).Info("evicted idle sessions")
			}
		}
	}
}

// filesystemSyncLoop removes sessions from memory when their files are deleted
func filesystemSyncLoop(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphanedSessions(manager, persistence)
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.WithField("session", sess.ID).Debug("pruned session from memory (file deleted)")
		}
	}
	if pruned > 0 {
		log.WithField("count", pruned).Info("filesystem sync pruned orphaned sessions")
	}
	return pruned
}

// apiReachable reports whether a REST API answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It proxies to --api-url when that
// API is reachable, otherwise it starts an internal HTTP API on a random
// loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("api-url")
	log.WithField("url", baseURL).Info("checking for external API server")

	if apiReachable(baseURL) {
		log.WithField("url", baseURL).Info("external API server found, using it for MCP")
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		svc, err := servicesFromFlags(cmd)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.WithField("url", baseURL).Info("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
