package main

import (
	"context"

	"github.com/projhub/backend/internal/config"
	"github.com/projhub/backend/internal/handlers"
	"github.com/projhub/backend/internal/models"
	"github.com/projhub/backend/internal/services"
	"github.com/projhub/backend/internal/storage"
	"github.com/projhub/backend/internal/utils"
	"github.com/projhub/backend/pkg/logger"
)

// appServices holds all initialized handlers needed by the application.
type appServices struct {
	authHandler     *handlers.AuthHandler
	projectHandler  *handlers.ProjectHandler
	documentHandler *handlers.DocumentHandler
}

// bootstrap initializes all application dependencies: database, object
// storage, services.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	services.InitSystemLogger(models.GetDB())

	blobs := initBlobStore(cfg)

	return &appServices{
		authHandler:     handlers.NewAuthHandler(models.GetDB(), cfg),
		projectHandler:  handlers.NewProjectHandler(models.GetDB(), blobs),
		documentHandler: handlers.NewDocumentHandler(models.GetDB(), blobs),
	}
}

// initBlobStore connects to MinIO, or falls back to the in-memory store
// when no endpoint is configured. The in-memory store loses content on
// restart and is meant for development only.
func initBlobStore(cfg *config.Config) storage.BlobStore {
	if cfg.Storage.Endpoint == "" {
		logger.Warn().Msg("no object storage endpoint configured, using in-memory blob store")
		return storage.NewMemoryStore()
	}

	blobs, err := storage.NewMinioStore(context.Background(), &cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to connect to object storage: %v", err)
	}
	return blobs
}
