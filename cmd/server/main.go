package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dharmaraopv/rate-limiter/internal/adapters/configstore"
	"github.com/dharmaraopv/rate-limiter/internal/adapters/http/handlers"
	httpMiddleware "github.com/dharmaraopv/rate-limiter/internal/adapters/http/middleware"
	memorystorage "github.com/dharmaraopv/rate-limiter/internal/adapters/storage/memory"
	redisstorage "github.com/dharmaraopv/rate-limiter/internal/adapters/storage/redis"
	"github.com/dharmaraopv/rate-limiter/internal/config"
	"github.com/dharmaraopv/rate-limiter/internal/core/ports"
	"github.com/dharmaraopv/rate-limiter/internal/core/services"
	"github.com/dharmaraopv/rate-limiter/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store, closeStore, err := initStorage(cfg.Storage, cfg.Limiter.NumSlots, logger)
	if err != nil {
		logger.Fatal("failed to init request store", zap.Error(err))
	}
	defer closeStore()

	limitStore, closeLimits, err := initLimitStore(cfg.LimitStore, logger)
	if err != nil {
		logger.Fatal("failed to init limit store", zap.Error(err))
	}
	defer closeLimits()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	limiter, err := services.NewLimiter(store, limitStore, services.Config{
		NumSlots:             cfg.Limiter.NumSlots,
		BlockedCacheCapacity: cfg.Limiter.BlockedCacheCapacity,
		CountDeniedAttempts:  cfg.Limiter.CountDeniedAttempts,
		Logger:               logger,
		Metrics:              m,
	})
	if err != nil {
		logger.Fatal("failed to create limiter", zap.Error(err))
	}

	h := handlers.New(limiter, limitStore, logger, m)

	r := chi.NewRouter()
	r.Use(httpMiddleware.RequestLogger(logger))
	h.Routes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.Storage.Kind),
			zap.String("limit_store", cfg.LimitStore.Kind))
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// initStorage resolves the request store backend once, from an explicit
// kind value.
func initStorage(cfg config.StorageConfig, numSlots int, logger *zap.Logger) (ports.RequestStore, func(), error) {
	switch cfg.Kind {
	case config.StorageRedis:
		store, err := redisstorage.New(redisstorage.Config{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			NumSlots: numSlots,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close redis store", zap.Error(err))
			}
		}, nil
	case config.StorageMemory:
		store := memorystorage.New(memorystorage.Config{
			NumSlots: numSlots,
			Capacity: cfg.MemoryCapacity,
		})
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Kind)
	}
}

func initLimitStore(cfg config.LimitStoreConfig, logger *zap.Logger) (ports.LimitStore, func(), error) {
	switch cfg.Kind {
	case config.LimitStoreFile:
		store, err := configstore.NewFileStore(cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close limit store", zap.Error(err))
			}
		}, nil
	case config.LimitStoreMemory:
		return configstore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported limit store type: %s", cfg.Kind)
	}
}
