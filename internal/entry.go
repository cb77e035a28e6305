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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/liber/internal/api"
	"github.com/starford/liber/internal/configwatch"
	"github.com/starford/liber/internal/ledgerdb"
	"github.com/starford/liber/internal/lending"
	"github.com/starford/liber/internal/mcpserver"
	"github.com/starford/liber/internal/sse"
	"github.com/starford/liber/pkg/config"
	"github.com/starford/liber/pkg/logging"
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

	levelVar := logging.Setup(cfg.App.LogFormat, cfg.App.LogLevel)
	logger := slog.Default()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the database directory exists.
	if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}

	// Open the lending ledger store; the schema is applied on open.
	db, err := ledgerdb.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	defer db.Close()

	// SSE broker for ledger events.
	broker := sse.NewBroker()
	defer broker.Close()

	// Build the lending service and API router.
	svc := lending.NewService(db, lending.WithPublisher(broker.PublishLedgerEvent))
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware)

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

	// Prometheus metrics (unauthenticated).
	r.Handle("/metrics", promhttp.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the config file for log-level changes.
	if app.configPath != "" {
		configPath := app.configPath
		g.Go(func() error {
			err := configwatch.Watch(gCtx, configPath, logger, func(path string) {
				fresh := NewDefaultConfig()
				if loadErr := config.Load(path, fresh); loadErr != nil {
					logger.Warn("config reload failed", slog.String("error", loadErr.Error()))
					return
				}
				if fresh.App.LogLevel != levelVar.Level() {
					logger.Info("log level changed", slog.String("level", fresh.App.LogLevel.String()))
					levelVar.Set(fresh.App.LogLevel)
				}
			})
			if err != nil {
				logger.Warn("config watcher unavailable", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the lending tools over MCP stdio instead of HTTP.
// Logs go to stderr so stdout stays clean for the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logging.Setup(LogFormatConsole, cfg.App.LogLevel)

	db, err := ledgerdb.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	defer db.Close()

	svc := lending.NewService(db)
	return mcpserver.New(svc).ServeStdio()
}
