package main

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

	"github.com/SscSPs/billed/internal/app"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	"github.com/SscSPs/billed/internal/handlers"
	"github.com/SscSPs/billed/internal/middleware"
	"github.com/SscSPs/billed/internal/platform/config"
	"github.com/SscSPs/billed/internal/platform/logging"
	"github.com/SscSPs/billed/internal/platform/metrics"
	"github.com/SscSPs/billed/internal/repositories/api"
	"github.com/SscSPs/billed/internal/repositories/database/pgsql"
	"github.com/SscSPs/billed/internal/repositories/database/sqlite"
	"github.com/SscSPs/billed/internal/utils"
	"github.com/SscSPs/billed/pkg/database"
	"github.com/gin-gonic/gin"
)

// @title Billed API
// @version 1.0
// @description Expense reports for employees: server-rendered views plus a JSON mirror of the bills list.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name billed_session
// @description Signed session cookie set by POST /login.

// @security SessionCookie
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger
	logger := logging.New(os.Stdout, cfg.IsProduction, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open bill store", slog.String("driver", cfg.StoreDriver), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("Error closing bill store", slog.String("error", cerr.Error()))
		}
	}()

	m := metrics.New()
	instrumented := metrics.InstrumentStore(store, m)

	sessions, err := app.NewRegistry(cfg.SessionCacheSize, instrumented, m.ObserveNavigation)
	if err != nil {
		logger.Error("Failed to create session registry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	uploadLimiter, err := middleware.NewMemoryLimiter(cfg.UploadRateLimit)
	if err != nil {
		logger.Error("Invalid upload rate limit", slog.String("rate", cfg.UploadRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	if err := handlers.RegisterValidators(); err != nil {
		logger.Error("Failed to register form validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	err = r.SetTrustedProxies(nil)
	if err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	deps := handlers.Dependencies{
		Sessions:      sessions,
		Metrics:       m,
		UploadLimiter: uploadLimiter,
		Posthog:       posthogClient,
	}
	if _, ok := store.(repositories.FileReader); ok {
		deps.Files = instrumented.(repositories.FileReader)
	}
	handlers.RegisterRoutes(r, cfg, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore builds the bill store selected by STORE_DRIVER and returns the
// function releasing it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.BillStoreFacade, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.StoreDriverPgsql:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")

		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			dbPool.Close()
			return nil, noop, err
		}
		repo := pgsql.NewPgxBillRepository(dbPool, cfg.PublicBaseURL)
		return repo, repo.Close, nil

	case config.StoreDriverSQLite:
		store, err := sqlite.New(cfg.SQLitePath, cfg.PublicBaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("SQLite store opened", slog.String("path", cfg.SQLitePath))
		return store, store.Close, nil

	default:
		logger.Info("Using remote bill API", slog.String("url", cfg.StoreAPIURL))
		return api.NewBillStore(cfg.StoreAPIURL, cfg.StoreAPIToken, cfg.StoreAPITimeout), noop, nil
	}
}
