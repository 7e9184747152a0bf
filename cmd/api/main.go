package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yanki-wallet-service/config"
	httpHandler "yanki-wallet-service/internal/adapter/http/handler"
	pgStorage "yanki-wallet-service/internal/adapter/storage/postgres"
	redisStorage "yanki-wallet-service/internal/adapter/storage/redis"
	"yanki-wallet-service/internal/core/ports"
	"yanki-wallet-service/internal/service"
	"yanki-wallet-service/pkg/logger"
	"yanki-wallet-service/pkg/resilience"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("cache_enabled", cfg.Cache.Enabled).
		Msg("Starting Yanki Wallet Service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	walletRepo := pgStorage.NewWalletRepo(pool)

	// Resilience policies: one pair guards reads, one guards writes.
	readPolicy := resilience.NewPolicy("walletCircuit", toResilienceConfig(cfg.Resilience.Wallet), log)
	writePolicy := resilience.NewPolicy("recordCircuit", toResilienceConfig(cfg.Resilience.Record), log)

	healthCheckers := []ports.HealthChecker{pgStorage.NewHealthCheck(pool)}

	// The cache is optional: when disabled Redis is never dialed and the
	// service reads straight from the store.
	var walletSvc ports.WalletService
	if cfg.Cache.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		walletCache := redisStorage.NewWalletCache(rdb)
		walletSvc = service.NewWalletService(walletRepo, walletCache, readPolicy, writePolicy, log)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		walletSvc = service.NewDirectWalletService(walletRepo, readPolicy, writePolicy, log)
	}

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func toResilienceConfig(pc config.PolicyConfig) resilience.Config {
	return resilience.Config{
		FailureRateThreshold: pc.FailureRateThreshold,
		SlidingWindowSize:    pc.SlidingWindowSize,
		OpenStateWait:        pc.OpenStateWait,
		HalfOpenCalls:        pc.HalfOpenCalls,
		CallTimeout:          pc.CallTimeout,
	}
}
