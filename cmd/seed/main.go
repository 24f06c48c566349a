package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"nyumba/internal/config"
	"nyumba/internal/database/migration"
	"nyumba/internal/infrastructure/persistence/postgres"
	"nyumba/internal/seeder"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.Runner{Dir: "migrations"}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	if err := seeder.RunAll(ctx, db.Pgx, logger, seeder.DemoAccountSeeder{}); err != nil {
		logger.Fatalf("failed to seed: %v", err)
	}

	logger.Println("Seeding complete")
}
