// Package main is the entry point for the tillpos terminal server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tillpos/internal/config"
	"tillpos/internal/domain/cart"
	"tillpos/internal/domain/catalog"
	"tillpos/internal/domain/invoice"
	"tillpos/internal/domain/orders"
	"tillpos/internal/domain/stock"
	"tillpos/internal/infrastructure/cache"
	v1 "tillpos/internal/infrastructure/http/v1"
	"tillpos/internal/infrastructure/remote"
	"tillpos/internal/infrastructure/storage/postgres"
	"tillpos/pkg/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.AppEnv == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting tillpos server")

	// --- Local persistent store ---
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	store, err := postgres.NewStore(txm)
	if err != nil {
		log.Fatalw("failed to create store", "error", err)
	}
	if err := store.Migrate(ctx); err != nil {
		log.Fatalw("failed to migrate store", "error", err)
	}
	log.Info("database connection established")

	// --- Snapshot cache ---
	var snapshotCache catalog.SnapshotCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(ctx, cache.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer redisCache.Close()
		snapshotCache = redisCache
		log.Infow("redis snapshot cache enabled", "addr", cfg.RedisAddr)
	} else {
		snapshotCache = cache.NewMemory()
		log.Info("in-memory snapshot cache enabled")
	}

	// --- Remote clients ---
	if cfg.RemoteBaseURL == "" {
		log.Fatal("REMOTE_BASE_URL not set")
	}
	remoteClient := remote.NewClient(remote.Config{
		BaseURL: cfg.RemoteBaseURL,
		Token:   cfg.RemoteToken,
		Timeout: cfg.RemoteTimeout,
	})

	// --- Domain services ---
	catalogSvc := catalog.NewService(store, remote.NewCatalogClient(remoteClient), snapshotCache, cfg.SyncStaleAfter)
	if err := catalogSvc.Load(ctx); err != nil {
		log.Fatalw("failed to load catalog snapshot", "error", err)
	}

	stockSvc := stock.NewService(remote.NewStockClient(remoteClient), catalogSvc)
	cartSvc := cart.NewService(store, catalogSvc)
	if err := cartSvc.Load(ctx); err != nil {
		log.Fatalw("failed to load cart", "error", err)
	}
	invoiceSvc := invoice.NewService(store, stockSvc)
	ordersCoordinator := orders.NewCoordinator(remote.NewOrdersClient(remoteClient))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:   log,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Invoices: invoiceSvc,
		Orders:   ordersCoordinator,
		DB:       pool.Pool,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
