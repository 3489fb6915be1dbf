package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/nimada80/plusp/internal/config"
	"github.com/nimada80/plusp/internal/logger"
	"github.com/nimada80/plusp/internal/repositories"
	"github.com/nimada80/plusp/internal/services"
	"github.com/nimada80/plusp/internal/store"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting reconciliation scheduler")

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	storeClient := store.NewClient(cfg.RecordStore.URL, cfg.RecordStore.ServiceRoleKey, logger.Logger, store.WithTimeout(cfg.RecordStore.Timeout))
	channelRepo := repositories.NewChannelRepository(storeClient, logger.Logger)
	userRepo := repositories.NewUserRepository(storeClient, logger.Logger)
	reconcileService := services.NewReconcileService(channelRepo, services.NewRelationSync(userRepo, channelRepo, logger.Logger), asynqClient, logger.Logger)

	// Create scheduler instance
	scheduler, err := NewScheduler(reconcileService, logger.Logger, cfg.Reconcile.Schedule)
	if err != nil {
		logger.Logger.Fatal("Failed to create scheduler", zap.Error(err))
	}

	// Start scheduler
	scheduler.Start()
	defer func() {
		logger.Logger.Info("Shutting down scheduler...")
		scheduler.Stop()
		logger.Logger.Info("Scheduler exited")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
