package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"marketplace-state-service/internal/aggregate"
	"marketplace-state-service/internal/api"
	"marketplace-state-service/internal/config"
	"marketplace-state-service/internal/logger"
	"marketplace-state-service/internal/remote"
	"marketplace-state-service/internal/session"
	"marketplace-state-service/internal/store"
)

const serviceName = "MarketplaceStateService"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: no .env file found, relying on system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: error loading configuration: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: error building logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("starting service",
		zap.String("service", serviceName),
		zap.String("env", cfg.AppEnv),
		zap.String("backend", cfg.State.Backend))

	kv, err := openStore(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to open persistent store", zap.Error(err))
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := kv.Ping(pingCtx); err != nil {
		cancelPing()
		zlog.Fatal("persistent store unreachable", zap.Error(err))
	}
	cancelPing()

	var remoteClient remote.Client
	if cfg.Remote.BaseURL != "" {
		remoteClient = remote.NewHTTPClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, zlog)
		zlog.Info("remote marketplace API enabled", zap.String("base_url", cfg.Remote.BaseURL))
	}

	// One service instance per aggregate for the whole process; everything
	// downstream receives them by reference.
	cart := aggregate.NewCart(kv, zlog)
	wishlist := aggregate.NewWishlist(kv, zlog)
	addresses := aggregate.NewAddressBook(kv, zlog)
	profile := aggregate.NewProfile(kv, zlog)
	subscription := aggregate.NewSubscription(kv, remoteClient, zlog)
	gate := aggregate.NewAuthorizationGate()
	catalog := aggregate.NewSellerCatalog(kv, gate, subscription, remoteClient, zlog)
	searches := aggregate.NewRecentSearches(kv, zlog)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelLoad()
	for name, load := range map[string]func(context.Context) error{
		"cart":           cart.Load,
		"wishlist":       wishlist.Load,
		"addresses":      addresses.Load,
		"profile":        profile.Load,
		"subscription":   subscription.Load,
		"sellerCatalog":  catalog.Load,
		"recentSearches": searches.Load,
	} {
		if err := load(loadCtx); err != nil {
			zlog.Fatal("failed to load aggregate", zap.String("aggregate", name), zap.Error(err))
		}
	}
	zlog.Info("all aggregates loaded")

	sessionLifecycle := session.NewLifecycle(kv, zlog,
		cart, wishlist, addresses, profile, subscription, catalog, searches)

	handler := api.NewHTTPHandler(api.Aggregates{
		Cart:         cart,
		Wishlist:     wishlist,
		Addresses:    addresses,
		Profile:      profile,
		Subscription: subscription,
		Catalog:      catalog,
		Searches:     searches,
		Session:      sessionLifecycle,
	}, zlog)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	registerHealthCheck(router, kv)
	handler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	waitForShutdown(zlog, httpServer, kv)
}

// openStore builds the configured persistence backend.
func openStore(cfg *config.Config, zlog *zap.Logger) (store.KVStore, error) {
	switch cfg.State.Backend {
	case config.BackendRedis:
		client, err := store.ConnectRedis(cfg.State.RedisURL)
		if err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, cfg.State.KeyPrefix), nil
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db), nil
	case config.BackendMemory:
		zlog.Warn("using in-memory store, state will not survive restart")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.State.Backend)
	}
}

func registerHealthCheck(router *chi.Mux, kv store.KVStore) {
	router.Get("/api/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		storeStatus := "healthy"
		if err := kv.Ping(ctx); err != nil {
			storeStatus = "unhealthy"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": serviceName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"store":       storeStatus,
		})
	})
}

func waitForShutdown(zlog *zap.Logger, httpServer *http.Server, kv store.KVStore) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	received := <-sigChan
	zlog.Info("received signal, starting graceful shutdown", zap.String("signal", received.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	}
	if err := kv.Close(); err != nil {
		zlog.Warn("error closing persistent store", zap.Error(err))
	}
	zlog.Info("shutdown complete")
}
