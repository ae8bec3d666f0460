package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/codepoint/pkg/config"
	"github.com/zots0127/codepoint/pkg/geo"
	"github.com/zots0127/codepoint/pkg/importer"
	"github.com/zots0127/codepoint/pkg/ingest"
	"github.com/zots0127/codepoint/pkg/queue"
	"github.com/zots0127/codepoint/pkg/search"
	"github.com/zots0127/codepoint/pkg/store"
)

func main() {
	cfg := config.Load()

	st, err := store.Open(cfg.Storage.Database)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer st.Close()

	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		log.Fatal("Failed to create storage directory:", err)
	}

	pool := queue.New(cfg.Ingest.Workers, func(task queue.Task) error {
		return ingest.NewWorker(st, cfg.Ingest.BatchSize).Ingest(task.File)
	})
	pool.Start()
	defer pool.Drain()

	orchestrator, err := importer.FromConfig(cfg, st, pool)
	if err != nil {
		log.Fatal("Failed to configure importer:", err)
	}

	service := search.NewService(st, geo.NewConverter(), cfg.Search.RadiusKm)
	api := search.NewAPI(service, orchestrator, cfg.API.Key)

	router := gin.Default()
	api.RegisterRoutes(router)

	log.Printf("Starting server on port %s", cfg.API.Port)
	if err := router.Run(":" + cfg.API.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
