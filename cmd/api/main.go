package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	_ "github.com/nimada80/plusp/docs"
	"github.com/nimada80/plusp/internal/auth/middleware"
	"github.com/nimada80/plusp/internal/auth/service"
	"github.com/nimada80/plusp/internal/config"
	"github.com/nimada80/plusp/internal/handlers"
	"github.com/nimada80/plusp/internal/logger"
	loggerMiddleware "github.com/nimada80/plusp/internal/logger/middleware"
	"github.com/nimada80/plusp/internal/middlewares"
	"github.com/nimada80/plusp/internal/models"
	"github.com/nimada80/plusp/internal/repositories"
	"github.com/nimada80/plusp/internal/services"
	"github.com/nimada80/plusp/internal/store"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Plus Console API
// @version 1.0
// @description Administration API for users, channels and media room tokens

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
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

	logger.Logger.Info("Starting console API")

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		os.Exit(1)
	}

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Record store client
	storeClient := store.NewClient(cfg.RecordStore.URL, cfg.RecordStore.ServiceRoleKey, logger.Logger, store.WithTimeout(cfg.RecordStore.Timeout))

	// Initialize repositories
	userRepo := repositories.NewUserRepository(storeClient, logger.Logger)
	channelRepo := repositories.NewChannelRepository(storeClient, logger.Logger)
	superAdminRepo := repositories.NewSuperAdminRepository(storeClient, logger.Logger)
	authProviderRepo := repositories.NewAuthProviderRepository(storeClient, logger.Logger)
	sessionRepo := repositories.NewSessionRepository(rdb)

	// Initialize media token generator
	tokenGenerator := service.NewMediaTokenGenerator(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, cfg.LiveKit.TokenTTL)

	// Initialize services
	relationSync := services.NewRelationSync(userRepo, channelRepo, logger.Logger)
	channelService := services.NewChannelService(channelRepo, userRepo, relationSync, logger.Logger)
	userService := services.NewUserService(userRepo, channelRepo, authProviderRepo, superAdminRepo, relationSync, logger.Logger)
	authService := services.NewAuthService(superAdminRepo, userRepo, sessionRepo, cfg.Session.TTL, logger.Logger)
	mediaService := services.NewMediaService(authProviderRepo, userRepo, channelRepo, tokenGenerator, cfg.LiveKit.ServerURL, logger.Logger)
	superAdminService := services.NewSuperAdminService(superAdminRepo, logger.Logger)
	reconcileService := services.NewReconcileService(channelRepo, relationSync, asynqClient, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, mediaService, cfg.Session.CookieSecure, logger.Logger)
	channelHandler := handlers.NewChannelHandler(channelService, logger.Logger)
	userHandler := handlers.NewUserHandler(userService, logger.Logger)
	superAdminHandler := handlers.NewSuperAdminHandler(superAdminService, logger.Logger)
	reconcileHandler := handlers.NewReconcileHandler(reconcileService, logger.Logger)

	// Initialize auth middleware
	sessionMiddleware := middleware.SessionMiddleware(authService, logger.Logger)
	superAdminMiddleware := middleware.RoleMiddleware(models.RoleSuperAdmin)
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(1024 * 1024)) // 1MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, sessionMiddleware)
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware)
			channelHandler.RegisterRoutes(r)
			userHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(superAdminMiddleware)
				superAdminHandler.RegisterRoutes(r)
			})
		})
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware)
			reconcileHandler.RegisterRoutes(r)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
