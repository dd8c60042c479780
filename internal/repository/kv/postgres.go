package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Store backed by the kv_entries table. The pool is owned
// by the caller and is not closed by Close.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Store {
	return &postgresStore{pool: pool, logger: logging.OrNop(logger)}
}

func (s *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Warn("kv postgres: get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return v, nil
}

func (s *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	const q = `
INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`
	if _, err := s.pool.Exec(ctx, q, key, value); err != nil {
		s.logger.Warn("kv postgres: set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return err
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *postgresStore) Close() error { return nil }
