package app

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

	"sweetshop/internal/cache"
	"sweetshop/internal/config"
	"sweetshop/internal/database"
	"sweetshop/internal/event"
	"sweetshop/internal/handler"
	"sweetshop/internal/middleware"
	"sweetshop/internal/repository"
	"sweetshop/internal/router"
	"sweetshop/internal/service"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

// New connects every backing service, applies pending migrations and wires
// the HTTP stack. Redis and AMQP are only dialled when configured.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	slog.Info("applying database migrations")
	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.cleanupFuncs = append(a.cleanupFuncs, db.Close)

	pool := db.Pool
	accountRepo := repository.NewAccountRepository(pool)
	itemRepo := repository.NewItemRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	checks := map[string]handler.Check{"postgres": db.Ping}

	var itemCache *cache.ItemCache
	if cfg.CacheEnabled() {
		client, err := cache.Connect(ctx, cache.Config{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.cleanupFuncs = append(a.cleanupFuncs, func() { _ = client.Close() })
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		itemCache = cache.NewItemCache(client, cfg.CatalogCacheTTL)
		slog.Info("catalog cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CatalogCacheTTL)
	}

	bus := event.NewBus()
	if cfg.RelayEnabled() {
		publisher, err := event.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}

		relayCtx, cancelRelay := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			event.Relay(relayCtx, bus, publisher)
		}()
		a.cleanupFuncs = append(a.cleanupFuncs, func() {
			cancelRelay()
			<-done
			if err := publisher.Close(); err != nil {
				slog.Warn("closing event publisher", "error", err)
			}
		})
		slog.Info("event relay enabled", "queue", cfg.AMQPQueue)
	}

	authService, err := service.NewAuthService(accountRepo, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTIssuer)
	if err != nil {
		a.cleanup()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			a.cleanup()
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	auditService := service.NewAuditService(auditRepo)

	var catalog *service.CatalogService
	var inventory *service.InventoryService
	if itemCache != nil {
		catalog = service.NewCatalogService(itemRepo, itemCache, auditService, bus)
		inventory = service.NewInventoryService(itemRepo, itemCache, auditService, bus, cfg.LowStockThreshold)
	} else {
		catalog = service.NewCatalogService(itemRepo, nil, auditService, bus)
		inventory = service.NewInventoryService(itemRepo, nil, auditService, bus, cfg.LowStockThreshold)
	}

	appRouter := router.New(
		cfg,
		middleware.NewAuthMiddleware(authService),
		handler.NewAuthHandler(authService),
		handler.NewSweetHandler(catalog),
		handler.NewInventoryHandler(inventory),
		handler.NewAuditHandler(auditService),
		handler.NewHealthHandler(checks),
	)

	a.server = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return a, nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

// cleanup releases resources in reverse order of acquisition.
func (a *App) cleanup() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
