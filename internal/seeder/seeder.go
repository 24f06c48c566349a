package seeder

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seeder loads development fixtures. Every seeder must be idempotent so it
// can run against a database that was seeded before.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db *pgxpool.Pool) error
}

func RunAll(ctx context.Context, db *pgxpool.Pool, logger *log.Logger, seeders ...Seeder) error {
	if logger == nil {
		logger = log.Default()
	}

	for _, s := range seeders {
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seeder %s: %w", s.Name(), err)
		}
		logger.Printf("Seeder applied | name=%s", s.Name())
	}
	return nil
}
