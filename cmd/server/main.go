package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"interactive-sessions/internal/api"
	"interactive-sessions/internal/common/config"
	"interactive-sessions/internal/common/database"
	"interactive-sessions/internal/common/logger"
	"interactive-sessions/internal/kinds"
	"interactive-sessions/internal/orchestrator"
	"interactive-sessions/internal/store/cache"
	"interactive-sessions/internal/store/postgres"
	"interactive-sessions/internal/sweeper"
	"interactive-sessions/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting activity server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.HTTP.Address),
	)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pgClient *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pgClient, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pgClient.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL initialization")
	if err != nil {
		zapLog.Fatal("postgres connection failed", zap.Error(err))
	}
	defer pgClient.Close()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return redisClient.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "Redis initialization")
	if err != nil {
		zapLog.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	// --- Register activity kinds ---
	reg := registry.New()
	if err := kinds.RegisterAll(reg, log); err != nil {
		zapLog.Fatal("activity kind registration failed", zap.Error(err))
	}

	// --- Wire the orchestrator ---
	store := postgres.New(pgClient)
	resultsCache := cache.New(redisClient, cfg.Results.CacheTTL, log)
	service := orchestrator.New(reg, store, resultsCache, log)

	// --- Start the expiry sweeper ---
	if cfg.Sweep.Enabled {
		sweep := sweeper.New(service, cfg.Sweep.Interval, log)
		if err := sweep.Start(); err != nil {
			zapLog.Fatal("expiry sweeper failed to start", zap.Error(err))
		}
		defer sweep.Stop()
	}

	// --- HTTP server ---
	router := api.NewRouter(&api.Handler{
		Service:  service,
		Registry: reg,
		Log:      log,
	})
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Wait for shutdown signal ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
