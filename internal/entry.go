// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/nyberg/lagu/internal/api"
	"github.com/nyberg/lagu/internal/cache"
	"github.com/nyberg/lagu/internal/docprovider"
	"github.com/nyberg/lagu/internal/kv"
	"github.com/nyberg/lagu/internal/locator"
	"github.com/nyberg/lagu/internal/mcpserver"
	"github.com/nyberg/lagu/internal/notestore"
	"github.com/nyberg/lagu/internal/prefs"
	"github.com/nyberg/lagu/internal/sse"
	"github.com/nyberg/lagu/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger. In MCP mode stdout carries the
	// protocol, so logs go to stderr.
	logOut := os.Stdout
	if app.mcp {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_mode", cfg.Storage.Mode),
		slog.String("default_root", cfg.Storage.DefaultRoot),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// State store backs preferences and the flat backend. The timeout
	// wrapper bounds every preference access.
	stateDB, err := kv.OpenSQLite(cfg.Storage.StateDB)
	if err != nil {
		return fmt.Errorf("init state store: %w", err)
	}
	defer stateDB.Close()
	state := kv.WithTimeout(stateDB, kv.DefaultTimeout)

	// Document provider backs tree locators; optional.
	var provider docprovider.Provider
	if cfg.Storage.ProviderDB != "" {
		p, err := docprovider.OpenSQLite(cfg.Storage.ProviderDB)
		if err != nil {
			return fmt.Errorf("init document provider: %w", err)
		}
		defer p.Close()
		provider = p
	}

	if !cfg.Storage.Flat() {
		if err := os.MkdirAll(cfg.Storage.DefaultRoot, 0o755); err != nil {
			return fmt.Errorf("create default root: %w", err)
		}
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// A pending tick means the watcher supervisor will re-read the root
	// anyway, so dropped sends lose nothing.
	rootChanges := make(chan struct{}, 1)

	store := notestore.New(notestore.Config{
		DefaultRoot: cfg.Storage.DefaultRoot,
		FlatMode:    cfg.Storage.Flat(),
		Provider:    provider,
		KV:          state,
		Prefs:       prefs.NewManager(state, logger),
		Cache:       cache.New(0, nil),
		Logger:      logger,
		Events:      broker.PublishMutation,
		RootChanged: func() {
			select {
			case rootChanges <- struct{}{}:
			default:
			}
		},
	})

	// Apply any persisted root override before serving.
	if err := store.LoadRootPreference(ctx); err != nil {
		logger.Warn("root preference load failed", slog.String("error", err.Error()))
	}

	// MCP stdio mode replaces the HTTP surface entirely.
	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(store).ServeStdio()
	}

	apiRouter := api.NewRouter(store, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the active root for external edits, re-aiming whenever the
	// root override changes at runtime. Only path roots have anything to
	// watch; tree and flat backends mutate through us.
	g.Go(func() error {
		for {
			root := store.Root()
			wCtx, cancel := context.WithCancel(gCtx)
			done := make(chan struct{})
			if locator.KindOf(root) == locator.KindPath {
				go func() {
					defer close(done)
					err := watcher.Watch(wCtx, root, store, logger, func(kind, name string) {
						broker.PublishMutation("note."+kind, name)
					})
					if err != nil {
						logger.Warn("watcher stopped", slog.String("error", err.Error()))
					}
				}()
			} else {
				close(done)
			}

			select {
			case <-gCtx.Done():
				cancel()
				<-done
				return nil
			case <-rootChanges:
				logger.Info("root changed, restarting watcher",
					slog.String("root", store.Root()))
				cancel()
				<-done
			}
		}
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
