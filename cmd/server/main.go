// Package main is the entry point for the saleflow API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saleflow/internal/domain/auth"
	"saleflow/internal/domain/documents/invoice"
	"saleflow/internal/infrastructure/cache"
	v1 "saleflow/internal/infrastructure/http/v1"
	"saleflow/internal/infrastructure/numerator"
	"saleflow/internal/infrastructure/storage/postgres"
	"saleflow/internal/infrastructure/storage/postgres/auth_repo"
	"saleflow/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting saleflow server")

	// --- Database connection ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Feature flag cache ---
	// Flags reload on sys_feature_flags changes via LISTEN/NOTIFY.
	flagCache := cache.NewFlagCache(pool.Unwrap())
	if err := flagCache.Start(ctx); err != nil {
		log.Fatalw("failed to start feature flag cache", "error", err)
	}
	defer flagCache.Stop()
	flags := cache.NewCacheBackedFlags(flagCache)

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtConfig := auth.DefaultJWTConfig(jwtSecret)
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Auth Service ---
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)

	authConfig := auth.DefaultServiceConfig()
	authService := auth.NewService(userRepo, tokenRepo, txManager, jwtService, authConfig)

	// --- Numerator Service ---
	numeratorService := numerator.New(pool)

	// --- Posting policy ---
	var postingPolicy invoice.PostingPolicy
	if closedUntil := getEnv("PERIOD_CLOSED_UNTIL", ""); closedUntil != "" {
		parsed, err := time.Parse("2006-01-02", closedUntil)
		if err != nil {
			log.Fatalw("invalid PERIOD_CLOSED_UNTIL", "value", closedUntil, "error", err)
		}
		postingPolicy = invoice.NewStrictPolicy(parsed)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:               pool,
		TxManager:          txManager,
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		Numerator:          numeratorService,
		Flags:              flags,
		PostingPolicy:      postingPolicy,
		IdempotencyEnabled: getEnv("IDEMPOTENCY_ENABLED", "false") == "true",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
