package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	categoryrepo "storefront/internal/repository/category"
	customerrepo "storefront/internal/repository/customer"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	"storefront/internal/seed"
	customersvc "storefront/internal/service/customer"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.Named("seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	accounts := customersvc.New(
		customerrepo.NewPostgres(pool, logger),
		tokenrepo.NewPostgres(pool),
		cfg.JWTSecret,
		cfg.AccessTTL,
		logger,
	)
	err = seed.Apply(ctx,
		productrepo.NewPostgres(pool, logger),
		categoryrepo.NewPostgres(pool),
		accounts,
		logger,
	)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}
}
