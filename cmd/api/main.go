package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"loadwatch/adapters/postgres"
	"loadwatch/api"
	"loadwatch/domain/session"
	"loadwatch/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatalf("DATABASE_URL is required; the API serves persisted pipeline output")
	}

	store, err := postgres.Open(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	gin.SetMode(cfg.Server.GinMode)

	server := api.NewServer(store,
		session.TrackedMetrics(cfg.Risk.Categories),
		session.CategoryNames(cfg.Risk.Categories))

	log.Printf("Starting API server on :%s", cfg.Server.Port)
	if err := server.Run(cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
