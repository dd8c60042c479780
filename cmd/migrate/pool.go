package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
)

type runner struct {
	pool *pgxpool.Pool
}

func withPool(ctx context.Context, fn func(context.Context, *zap.Logger, runner) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.Named("migrate")

	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()
	return fn(ctx, logger, runner{pool: pool})
}
