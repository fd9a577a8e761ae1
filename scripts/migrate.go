package main

import (
	"log"
	"os"

	"github.com/pitchlabs/salescoach/internal/infrastructure/database"
	"github.com/pitchlabs/salescoach/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("🔄 Applying migrations from migrations/ directory...")
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	os.Exit(0)
}
