package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/db"
	categoryrepo "storefront/internal/repository/category"
	customerrepo "storefront/internal/repository/customer"
	"storefront/internal/repository/kv"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	categorysvc "storefront/internal/service/category"
	customersvc "storefront/internal/service/customer"
	"storefront/internal/service/mockauth"
	productsvc "storefront/internal/service/product"
	"storefront/internal/state/auth"
)

// backends holds everything selected by configuration.
type backends struct {
	pool       *pgxpool.Pool
	store      kv.Store
	products   *productsvc.Service
	categories *categorysvc.Service
	authAPI    auth.API
	purge      func(context.Context) (int64, error)
}

func openBackends(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}
	needDB := cfg.StoreBackend == "postgres" || cfg.CatalogBackend == "postgres" || cfg.AuthMode == "service"
	if needDB {
		pool, err := db.Connect(ctx, cfg.DBConnString, logger.Named("db"))
		if err != nil {
			return nil, fmt.Errorf("connect to db: %w", err)
		}
		b.pool = pool
	}

	store, err := openStore(ctx, cfg, b.pool, logger.Named("kv"))
	if err != nil {
		b.Close()
		return nil, err
	}
	b.store = store

	switch cfg.CatalogBackend {
	case "postgres":
		b.products = productsvc.New(productrepo.NewPostgres(b.pool, logger.Named("products")))
		b.categories = categorysvc.New(categoryrepo.NewPostgres(b.pool))
	case "fixtures", "":
		b.products = productsvc.New(productrepo.NewMemory(productrepo.Fixtures()))
		b.categories = categorysvc.New(categoryrepo.NewMemory(categoryrepo.Fixtures()))
	default:
		b.Close()
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.CatalogBackend)
	}

	switch cfg.AuthMode {
	case "service":
		svc := customersvc.New(
			customerrepo.NewPostgres(b.pool, logger.Named("customers")),
			tokenrepo.NewPostgres(b.pool),
			cfg.JWTSecret,
			cfg.AccessTTL,
			logger.Named("auth"),
		)
		b.authAPI = svc
		b.purge = svc.PurgeRevoked
	case "mock", "":
		b.authAPI = mockauth.New(mockauth.Options{Latency: cfg.AuthLatency, Logger: logger.Named("mockauth")})
	default:
		b.Close()
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}

	logger.Info("backends ready",
		zap.String("store", cfg.StoreBackend),
		zap.String("catalog", cfg.CatalogBackend),
		zap.String("auth", cfg.AuthMode),
	)
	return b, nil
}

func openStore(ctx context.Context, cfg config.Config, pool *pgxpool.Pool, logger *zap.Logger) (kv.Store, error) {
	switch cfg.StoreBackend {
	case "memory", "":
		return kv.NewMemory(), nil
	case "redis":
		return kv.NewRedis(ctx, cfg.RedisAddr, cfg.AccessTTL, logger)
	case "sqlite":
		return kv.NewSQLite(cfg.SQLitePath, logger)
	case "postgres":
		return kv.NewPostgres(pool, logger), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (b *backends) Close() {
	if b.store != nil {
		_ = b.store.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}
