package category

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `
SELECT id::text, key, name, COALESCE(slug, ''), COALESCE(parent_key, ''), COALESCE(order_hint, ''), created_at
FROM categories
ORDER BY COALESCE(order_hint, '') ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Key, &c.Name, &c.Slug, &c.ParentKey, &c.OrderHint, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (key, name, slug, parent_key, order_hint)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
ON CONFLICT (key) DO UPDATE
SET name = EXCLUDED.name,
    slug = COALESCE(EXCLUDED.slug, categories.slug),
    parent_key = COALESCE(EXCLUDED.parent_key, categories.parent_key),
    order_hint = COALESCE(EXCLUDED.order_hint, categories.order_hint)
RETURNING id::text, created_at, COALESCE(slug, ''), COALESCE(parent_key, ''), COALESCE(order_hint, '')
`
	out := domain.Category{Key: c.Key, Name: c.Name}
	err := r.pool.QueryRow(ctx, q, c.Key, c.Name, c.Slug, c.ParentKey, c.OrderHint).
		Scan(&out.ID, &out.CreatedAt, &out.Slug, &out.ParentKey, &out.OrderHint)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
