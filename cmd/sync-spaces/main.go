package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"parkhub/internal/config"
	"parkhub/internal/database"
	"parkhub/internal/logger"
	"parkhub/internal/repository"
	"parkhub/internal/search"
	"parkhub/internal/service"
)

// Rebuilds the Elasticsearch spaces index from Postgres. Run after bulk
// imports or when the index drifts out of sync.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting spaces index synchronization")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	searchClient, err := search.NewClient(cfg.Search)
	if err != nil {
		log.Fatalf("Failed to connect to Elasticsearch: %v", err)
	}

	repos := repository.NewRepositories(db)
	spaces := service.NewSpaceService(repos.Spaces, searchClient, nil)

	start := time.Now()
	count, err := spaces.ReindexAll(context.Background())
	if err != nil {
		log.Fatalf("Reindex failed: %v", err)
	}

	slog.Info("Spaces index synchronization completed",
		"spaces_indexed", count,
		"duration", time.Since(start).String())
}
