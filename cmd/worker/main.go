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
	"github.com/nimada80/plusp/internal/models"
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

	logger.Logger.Info("Starting reconciliation worker")

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
		os.Exit(1)
	}

	// Initialize repositories and services
	storeClient := store.NewClient(cfg.RecordStore.URL, cfg.RecordStore.ServiceRoleKey, logger.Logger, store.WithTimeout(cfg.RecordStore.Timeout))
	userRepo := repositories.NewUserRepository(storeClient, logger.Logger)
	channelRepo := repositories.NewChannelRepository(storeClient, logger.Logger)
	relationSync := services.NewRelationSync(userRepo, channelRepo, logger.Logger)
	reconcileService := services.NewReconcileService(channelRepo, relationSync, nil, logger.Logger)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	// Create worker instance
	worker := NewWorker(logger.Logger, reconcileService)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(models.ReconcileTaskType, worker.HandleReconcileTask)

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}
