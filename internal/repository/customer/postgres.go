package customer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrNop(logger)}
}

const customerColumns = `id::text, email, password_hash, name, addresses, preferences, created_at`

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	addrJSON, err := json.Marshal(u.Addresses)
	if err != nil {
		return nil, err
	}
	prefJSON, err := json.Marshal(u.Preferences)
	if err != nil {
		return nil, err
	}

	q := `
INSERT INTO customers (email, password_hash, name, addresses, preferences)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + customerColumns
	return r.scanUser(r.pool.QueryRow(ctx, q,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.Name,
		addrJSON,
		prefJSON,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE lower(email) = lower($1) LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id::text = $1 LIMIT 1`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var addrJSON, prefJSON []byte
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &addrJSON, &prefJSON, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error("customer repo: scan", zap.Error(err))
		return nil, err
	}
	if len(addrJSON) > 0 {
		if err := json.Unmarshal(addrJSON, &u.Addresses); err != nil {
			r.logger.Error("customer repo: decode addresses", zap.String("id", u.ID), zap.Error(err))
			return nil, err
		}
	}
	if len(prefJSON) > 0 {
		if err := json.Unmarshal(prefJSON, &u.Preferences); err != nil {
			r.logger.Error("customer repo: decode preferences", zap.String("id", u.ID), zap.Error(err))
			return nil, err
		}
	}
	return &u, nil
}
