package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	httpapi "github.com/paymall/site-api/internal/site/http"
	"github.com/paymall/site-api/internal/site/ratelimit"
	"github.com/paymall/site-api/internal/site/service"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/internal/site/store/drivers/sqlite"
	"github.com/paymall/site-api/pkg/jwtx"
	"github.com/paymall/site-api/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the site API with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	keys  *jwtx.EdDSAKeyPair
	redis *redis.Client // nil when no REDIS_ADDR is configured

	// Services
	authService         *service.AuthService
	verifyService       *service.VerifyService
	registerService     *service.RegisterService
	inviteService       *service.InviteService
	blogService         *service.BlogService
	leadService         *service.LeadService
	setupService        *service.SetupService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "site-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := jwtx.NewEdDSAKeyPair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session signing keys: %w", err)
	}
	app.keys = keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("site api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down site api...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("site api stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.keys,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.verifyService = &service.VerifyService{
		Secret:  app.cfg.AdminAccessCode,
		Limiter: app.initVerifyLimiter(),
	}

	app.registerService = &service.RegisterService{Store: app.db}
	app.inviteService = &service.InviteService{Store: app.db}
	app.blogService = &service.BlogService{Store: app.db}
	app.leadService = &service.LeadService{Store: app.db}
	app.setupService = &service.SetupService{
		Store:     app.db,
		SetupCode: app.cfg.AdminSetupCode,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initVerifyLimiter wires the verify attempt counter. With a Redis address
// the window is shared across instances; without one it falls back to a
// single-process counter.
func (app *Application) initVerifyLimiter() ratelimit.Limiter {
	if app.cfg.RedisAddr == "" {
		app.logger.Info("verify limiter using in-memory windows (no REDIS_ADDR)")
		return ratelimit.NewMemoryLimiter(app.cfg.VerifyMaxAttempts, app.cfg.VerifyWindow)
	}

	app.redis = redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})
	app.logger.Info("verify limiter using redis", "addr", app.cfg.RedisAddr)
	return ratelimit.NewRedisLimiter(app.redis, "verify", app.cfg.VerifyMaxAttempts, app.cfg.VerifyWindow)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		jwtx.NewEdDSAVerifier(app.keys, app.cfg.Issuer),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.VerifyService = app.verifyService
	router.RegisterService = app.registerService
	router.InviteService = app.inviteService
	router.BlogService = app.blogService
	router.LeadService = app.leadService
	router.SetupService = app.setupService

	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              ":" + strconv.Itoa(app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
