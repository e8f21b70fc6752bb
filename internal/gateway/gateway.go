// ABOUTME: Gateway orchestrator that wires the Apollo client, tool registry and MCP transports
// ABOUTME: Manages the failure store, HTTP server, health endpoints and shutdown lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/apollo-gateway/internal/auth"
	"github.com/2389/apollo-gateway/internal/builtins"
	"github.com/2389/apollo-gateway/internal/client"
	"github.com/2389/apollo-gateway/internal/config"
	"github.com/2389/apollo-gateway/internal/mcp"
	"github.com/2389/apollo-gateway/internal/packs"
	"github.com/2389/apollo-gateway/internal/store"
)

// Gateway orchestrates the apollo-gateway components.
type Gateway struct {
	config     *config.Config
	store      store.Store
	client     *client.Client
	httpServer *http.Server
	logger     *slog.Logger

	// packRegistry holds the frozen Apollo tool descriptors
	packRegistry *packs.Registry

	// packRouter validates arguments and dispatches tool calls
	packRouter *packs.Router

	// mcpTokens maps static MCP access tokens to principals and capabilities
	mcpTokens *mcp.TokenStore

	// jwtVerifier is nil when auth.jwt_secret is not configured
	jwtVerifier *auth.JWTVerifier

	// mcpServer is the Streamable HTTP MCP endpoint
	mcpServer *mcp.Server

	startedAt time.Time
}

// initStore opens the SQLite store, or an in-memory one when no path is configured.
func initStore(cfg *config.Config) (store.Store, error) {
	if cfg.Database.Path == "" {
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// pruneHistory drops failures and tool calls older than the configured retention.
func pruneHistory(ctx context.Context, s store.Store, retention time.Duration, logger *slog.Logger) {
	if retention <= 0 {
		return
	}
	failures, calls, err := store.Prune(ctx, s, time.Now().Add(-retention))
	if err != nil {
		logger.Warn("failed to prune history", "error", err)
		return
	}
	if failures > 0 || calls > 0 {
		logger.Info("pruned history",
			"failures", failures,
			"tool_calls", calls,
			"retention", retention,
		)
	}
}

// newMCPTokens loads the static tokens from config.
func newMCPTokens(cfg *config.Config) *mcp.TokenStore {
	tokens := mcp.NewTokenStore()
	for i, t := range cfg.MCP.Tokens {
		principal := t.Principal
		if principal == "" {
			principal = fmt.Sprintf("token-%d", i)
		}
		tokens.Add(t.Token, principal, t.Capabilities)
	}
	return tokens
}

// New creates a new Gateway instance with the given configuration and logger.
// Nothing listens until Run is called.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	failureStore, err := initStore(cfg)
	if err != nil {
		return nil, err
	}
	pruneHistory(context.Background(), failureStore, cfg.Database.FailureRetention, logger)

	gw, err := build(cfg, failureStore, logger)
	if err != nil {
		_ = failureStore.Close()
		return nil, err
	}
	return gw, nil
}

func build(cfg *config.Config, failureStore store.Store, logger *slog.Logger) (*Gateway, error) {
	apolloClient, err := client.New(client.Config{
		APIKey:   cfg.Apollo.APIKey,
		BaseURL:  cfg.Apollo.BaseURL,
		Logger:   logger,
		Failures: failureStore,
	})
	if err != nil {
		return nil, fmt.Errorf("creating apollo client: %w", err)
	}

	packRegistry := packs.NewRegistry(logger.With("component", "packs"))
	if err := packRegistry.RegisterBuiltinPack(builtins.ApolloPack(apolloClient)); err != nil {
		return nil, fmt.Errorf("registering apollo pack: %w", err)
	}
	packRegistry.Freeze()

	packRouter := packs.NewRouter(packs.RouterConfig{
		Registry: packRegistry,
		Logger:   logger.With("component", "router"),
		Usage:    failureStore,
	})

	gw := &Gateway{
		config:       cfg,
		store:        failureStore,
		client:       apolloClient,
		logger:       logger,
		packRegistry: packRegistry,
		packRouter:   packRouter,
		mcpTokens:    newMCPTokens(cfg),
		startedAt:    time.Now(),
	}

	// Keep the interface nil when no secret is configured
	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		gw.jwtVerifier, err = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
		if err != nil {
			return nil, fmt.Errorf("creating JWT verifier: %w", err)
		}
		verifier = gw.jwtVerifier
	}

	gw.mcpServer, err = mcp.NewServer(mcp.Config{
		Registry:      packRegistry,
		Router:        packRouter,
		Logger:        logger,
		TokenVerifier: verifier,
		TokenStore:    gw.mcpTokens,
		RequireAuth:   cfg.MCP.RequireAuth,
		DefaultCaps:   cfg.MCP.DefaultCapabilities,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)
	gw.registerHTTPAPIRoutes(mux)
	gw.mcpServer.RegisterRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// registerHTTPAPIRoutes mounts the read-only JSON API, behind JWT auth when
// a secret is configured.
func (g *Gateway) registerHTTPAPIRoutes(mux *http.ServeMux) {
	if g.jwtVerifier != nil {
		authMiddleware := auth.HTTPAuthMiddleware(g.jwtVerifier)
		mux.Handle("/api/tools", authMiddleware(http.HandlerFunc(g.handleListTools)))
		mux.Handle("/api/failures", authMiddleware(http.HandlerFunc(g.handleListFailures)))
		mux.Handle("/api/usage", authMiddleware(http.HandlerFunc(g.handleUsage)))
		g.logger.Info("HTTP auth middleware enabled")
		return
	}
	mux.HandleFunc("/api/tools", g.handleListTools)
	mux.HandleFunc("/api/failures", g.handleListFailures)
	mux.HandleFunc("/api/usage", g.handleUsage)
	g.logger.Warn("HTTP auth disabled - no jwt_secret configured")
}

// Registry returns the frozen tool registry.
func (g *Gateway) Registry() *packs.Registry {
	return g.packRegistry
}

// Router returns the tool router.
func (g *Gateway) Router() *packs.Router {
	return g.packRouter
}

// Failures returns the upstream failure log.
func (g *Gateway) Failures() store.FailureStore {
	return g.store
}

// Usage returns the tool call usage store.
func (g *Gateway) Usage() store.UsageStore {
	return g.store
}

// JWTVerifier returns the token verifier, or nil when auth.jwt_secret is unset.
func (g *Gateway) JWTVerifier() *auth.JWTVerifier {
	return g.jwtVerifier
}

// Handler returns the HTTP handler serving health, API and MCP routes.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// startServer serves HTTP in a goroutine, returning error channel.
func (g *Gateway) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	return errCh
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	g.logger.Info("starting gateway",
		"http_addr", g.config.Server.HTTPAddr,
		"base_url", g.client.BaseURL(),
		"tools", len(g.packRegistry.GetAllTools()),
		"mcp_tokens", g.mcpTokens.TokenCount(),
	)

	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		_ = g.store.Close()
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := g.startServer(ln)

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// RunStdio serves every tool over MCP stdio until the client disconnects or
// ctx is canceled, then closes the store.
func (g *Gateway) RunStdio(ctx context.Context) error {
	server, err := mcp.NewStdioServer(mcp.StdioConfig{
		Registry: g.packRegistry,
		Router:   g.packRouter,
		Logger:   g.logger,
	})
	if err != nil {
		_ = g.store.Close()
		return fmt.Errorf("creating stdio server: %w", err)
	}

	runErr := server.Run(ctx)
	closeErr := g.store.Close()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return closeErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout,
// since the run context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.Server.ShutdownTimeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and closes the store.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "store close", g.store.Close())

	return errors.Join(errs...)
}

// Close releases the store without serving. Used by one-shot CLI commands.
func (g *Gateway) Close() error {
	return g.store.Close()
}
