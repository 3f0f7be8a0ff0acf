// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bettersnoozing/hack-mcwics/internal/ai/gemini"
	"github.com/bettersnoozing/hack-mcwics/internal/api"
	"github.com/bettersnoozing/hack-mcwics/internal/chat"
	"github.com/bettersnoozing/hack-mcwics/internal/common/config"
	"github.com/bettersnoozing/hack-mcwics/internal/common/database"
	"github.com/bettersnoozing/hack-mcwics/internal/common/logger"
	"github.com/bettersnoozing/hack-mcwics/internal/store"
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

	zapLog.Info("Starting recruitment server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.HTTP.Address),
	)

	ctx := context.Background()

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Stores ---
	records := store.NewElasticStore(esClient.Client, log)
	directory := store.NewDirectory(pg.DB, log)

	// --- Chat pipeline ---
	resolver := chat.NewResolver(records, cfg.Chat.FallbackAdmins, cfg.Chat.PoolLimit, log)
	gate := chat.NewGate(records, cfg.Chat.FallbackAdmins)
	executor := chat.NewExecutor(records, log)
	sessions := chat.NewRedisSessionStore(
		redisClient.Client,
		cfg.Chat.HistoryLimit,
		time.Duration(cfg.Chat.SessionTTL)*time.Second,
	)

	var generator chat.Generator
	if cfg.Gemini.APIKey != "" {
		gem, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			zapLog.Fatal("gemini client failed", zap.Error(err))
		}
		generator = gem
		zapLog.Info("Gemini client initialized", zap.String("model", gem.Model()))
	} else {
		zapLog.Warn("No Gemini API key configured, replies degrade to system notes")
	}

	engine := chat.NewEngine(resolver, gate, executor, sessions, generator, log)

	// --- HTTP server ---
	server := api.NewServer(engine, gate, executor, records, directory, cfg, log)
	httpServer := server.NewHTTPServer(cfg.HTTP)

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
