package app

import (
	"context"
	"log"
	"time"

	"nyumba/internal/config"
	"nyumba/internal/database/migration"
	"nyumba/internal/infrastructure/cache"
	"nyumba/internal/infrastructure/persistence/postgres"
	"nyumba/internal/ws"
)

type Container struct {
	Config config.Config
	DB     *postgres.Pool
	Cache  *cache.Redis
	Hub    *ws.Hub
	Logger *log.Logger
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	runner := migration.Runner{Dir: "migrations"}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		db.Close()
		return nil, err
	}

	rds := cache.NewRedis(logger)

	hub := ws.NewHub(logger)
	go hub.Run()

	return &Container{
		Config: cfg,
		DB:     db,
		Cache:  rds,
		Hub:    hub,
		Logger: logger,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
