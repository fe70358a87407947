package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"loadwatch/adapters/postgres"
	"loadwatch/adapters/tabular"
	"loadwatch/app"
	"loadwatch/domain/session"
	"loadwatch/internal/config"
	"loadwatch/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	reader := tabular.NewSessionReader(cfg.Data.SessionsFile)
	tracked := session.TrackedMetrics(cfg.Risk.Categories)
	categories := session.CategoryNames(cfg.Risk.Categories)

	sinks := []ports.ResultSink{
		tabular.NewCSVWriter(cfg.Data.OutputDir, tracked, categories),
	}
	if cfg.Database.URL != "" {
		store, err := postgres.Open(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		sinks = append(sinks, store)
	}

	service, err := app.NewPipelineService(reader, cfg, sinks...)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	result, err := service.Run(ctx)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	m := result.Manifest
	log.Printf("Run %s complete in %dms: %d sessions in, %d rejected, %d daily rows, %d weekly player rows, %d weekly team rows",
		m.RunID, m.RuntimeMs, m.SessionsRead, m.RejectedRows, m.DailyRows, m.WeeklyPlayerRows, m.WeeklyTeamRows)
}
