package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/drive"
	"github.com/andresuchdata/replenish/internal/publish"
	"github.com/andresuchdata/replenish/internal/repository/postgres"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/andresuchdata/replenish/internal/storage"
	"github.com/andresuchdata/replenish/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	resultCache, locker, err := cache.NewBackends(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		resultCache, locker = cache.NewNoopReplenishmentCache(), cache.NewLocalRunLocker()
	}

	replenishmentService := service.NewReplenishmentService(
		postgres.NewReplenishmentRepository(db),
		resultCache,
		locker,
		service.EngineOptionsFromConfig(cfg.Engine),
		time.Now,
	)

	publishers := buildPublishers(cfg)
	if len(publishers) == 0 {
		logger.Log.Warn().Msg("No report publishers enabled; publish requests will fail")
	}
	publishService := publish.NewService(replenishmentService, publishers...)

	r := mux.NewRouter()
	publish.NewHandler(publishService, replenishmentService.CurrentWeek).RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.PublishPort)
	logger.Log.Info().Str("addr", addr).Int("publishers", len(publishers)).Msg("Publishing server starting")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Log.Fatal().Err(err).Msg("Publishing server stopped")
	}
}

func buildPublishers(cfg *config.Config) []publish.Publisher {
	var publishers []publish.Publisher

	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Log.Error().Err(err).Msg("Failed to initialize object storage")
		} else {
			publishers = append(publishers, publish.NewObjectPublisher(client, cfg.Storage.Prefix))
		}
	}

	if cfg.Drive.Enabled {
		driveService, err := drive.NewService(context.Background(), cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Error().Err(err).Msg("Failed to initialize Google Drive service")
		} else {
			publishers = append(publishers, publish.NewDrivePublisher(driveService, cfg.Drive.FolderID))
		}
	}

	return publishers
}
