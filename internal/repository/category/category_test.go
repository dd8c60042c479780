package category

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestMemory_ListOrdersByHint(t *testing.T) {
	repo := NewMemory([]domain.Category{
		{Key: "b", Name: "B", OrderHint: "0.2"},
		{Key: "a", Name: "A", OrderHint: "0.9"},
		{Key: "c", Name: "C", OrderHint: "0.1"},
	})
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].Key != "c" || list[1].Key != "b" || list[2].Key != "a" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestPostgres_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool)
	first, err := repo.Upsert(ctx, domain.Category{Key: "cat-1", Name: "Cat 1", Slug: "cat-1"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.ID == "" || first.Key != "cat-1" {
		t.Fatalf("unexpected category %+v", first)
	}

	second, err := repo.Upsert(ctx, domain.Category{Key: "cat-1", Name: "Cat 1 Updated"})
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if second.ID != first.ID || second.Slug != "cat-1" {
		t.Fatalf("expected same row with kept slug, got %+v", second)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Cat 1 Updated" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("ping db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE categories RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
