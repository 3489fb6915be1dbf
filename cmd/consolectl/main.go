package main

import (
	"log"
	"os"

	"github.com/nimada80/plusp/internal/config"
	"github.com/nimada80/plusp/internal/logger"
	"github.com/nimada80/plusp/internal/repositories"
	"github.com/nimada80/plusp/internal/services"
	"github.com/nimada80/plusp/internal/store"
)

func main() {
	rootCmd := newRootCmd(loadConsole)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConsole wires the services used by the operator commands from the environment
func loadConsole() (*console, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Printf("Failed to initialize logger: %v\n", err)
	}

	storeClient := store.NewClient(cfg.RecordStore.URL, cfg.RecordStore.ServiceRoleKey, logger.Logger, store.WithTimeout(cfg.RecordStore.Timeout))
	userRepo := repositories.NewUserRepository(storeClient, logger.Logger)
	channelRepo := repositories.NewChannelRepository(storeClient, logger.Logger)
	superAdminRepo := repositories.NewSuperAdminRepository(storeClient, logger.Logger)
	relationSync := services.NewRelationSync(userRepo, channelRepo, logger.Logger)

	return &console{
		reconciler:  services.NewReconcileService(channelRepo, relationSync, nil, logger.Logger),
		superAdmins: services.NewSuperAdminService(superAdminRepo, logger.Logger),
	}, nil
}
