package category

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// Fixtures is the demo category tree matching the product fixtures.
func Fixtures() []domain.Category {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return []domain.Category{
		{ID: "cat-apparel", Key: "apparel", Name: "Apparel", Slug: "apparel", OrderHint: "0.1", CreatedAt: created},
		{ID: "cat-footwear", Key: "footwear", Name: "Footwear", Slug: "footwear", OrderHint: "0.2", CreatedAt: created},
		{ID: "cat-accessories", Key: "accessories", Name: "Accessories", Slug: "accessories", OrderHint: "0.3", CreatedAt: created},
	}
}

type memoryRepo struct {
	mu    sync.RWMutex
	byKey map[string]domain.Category
}

func NewMemory(seed []domain.Category) Repository {
	r := &memoryRepo{byKey: make(map[string]domain.Category, len(seed))}
	for _, c := range seed {
		r.byKey[c.Key] = c
	}
	return r
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.byKey))
	for _, c := range r.byKey {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderHint != out[j].OrderHint {
			return out[i].OrderHint < out[j].OrderHint
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *memoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[c.Key]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
		c.CreatedAt = time.Now().UTC()
	}
	r.byKey[c.Key] = c
	clone := c
	return &clone, nil
}
