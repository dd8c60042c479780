package token

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	const q = `
INSERT INTO revoked_tokens (token_id, expires_at)
VALUES ($1, $2)
ON CONFLICT (token_id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, tokenID, expiresAt)
	return err
}

func (r *postgresRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`, tokenID).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
