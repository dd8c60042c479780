package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to addr and verifies it with a ping. A zero ttl keeps keys forever.
func NewRedis(ctx context.Context, addr string, ttl time.Duration, logger *zap.Logger) (Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisFromClient(client, ttl, logger), nil
}

func NewRedisFromClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) Store {
	return &redisStore{client: client, ttl: ttl, logger: logging.OrNop(logger)}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		s.logger.Warn("kv redis: get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return v, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		s.logger.Warn("kv redis: set failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
