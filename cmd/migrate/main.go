package main

import (
	"log"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/internal/logger"
	"github.com/gatherly/gatherly/internal/postgres"
	repogorm "github.com/gatherly/gatherly/internal/repository/gorm"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewClient(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}

	if err := repogorm.Migrate(db); err != nil {
		logger.Fatalf("Failed to run migration: %v", err)
	}

	logger.Infow("Migration completed successfully")
}
