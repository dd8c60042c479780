package token

import (
	"context"
	"time"
)

// Repository tracks session markers that were revoked before they expired.
type Repository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
