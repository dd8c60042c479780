package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// Fixtures is the demo catalog served when no database is configured.
func Fixtures() []domain.Product {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	return []domain.Product{
		{ID: "prod-classic-tee", Key: "classic-tee", SKU: "TEE-001", Name: "Classic Cotton Tee", Description: "Everyday crew-neck tee in organic cotton.", PriceCents: 2500, Currency: "USD", CategoryKey: "apparel", Images: []string{"/images/classic-tee.jpg"}, Attributes: map[string]interface{}{"variants": []string{"black", "white", "navy"}}, CreatedAt: created},
		{ID: "prod-denim-jacket", Key: "denim-jacket", SKU: "JKT-014", Name: "Denim Jacket", Description: "Stonewashed trucker jacket.", PriceCents: 8900, Currency: "USD", CategoryKey: "apparel", Images: []string{"/images/denim-jacket.jpg"}, Attributes: map[string]interface{}{"variants": []string{"S", "M", "L", "XL"}}, CreatedAt: created.Add(24 * time.Hour)},
		{ID: "prod-runner", Key: "trail-runner", SKU: "SHO-201", Name: "Trail Runner Sneakers", Description: "Lightweight shoes with grippy outsole.", PriceCents: 12000, Currency: "USD", CategoryKey: "footwear", Images: []string{"/images/trail-runner.jpg"}, Attributes: map[string]interface{}{"variants": []string{"40", "41", "42", "43", "44"}}, CreatedAt: created.Add(48 * time.Hour)},
		{ID: "prod-canvas-tote", Key: "canvas-tote", SKU: "BAG-007", Name: "Canvas Tote", Description: "Heavy canvas tote with inner pocket.", PriceCents: 1800, Currency: "USD", CategoryKey: "accessories", Images: []string{"/images/canvas-tote.jpg"}, CreatedAt: created.Add(72 * time.Hour)},
		{ID: "prod-wool-beanie", Key: "wool-beanie", SKU: "ACC-033", Name: "Wool Beanie", Description: "Ribbed merino beanie.", PriceCents: 2200, Currency: "USD", CategoryKey: "accessories", Images: []string{"/images/wool-beanie.jpg"}, Attributes: map[string]interface{}{"variants": []string{"red", "grey"}}, CreatedAt: created.Add(96 * time.Hour)},
		{ID: "prod-leather-boots", Key: "leather-boots", SKU: "SHO-310", Name: "Leather Chelsea Boots", Description: "Full-grain leather with elastic gussets.", PriceCents: 18500, Currency: "USD", CategoryKey: "footwear", Images: []string{"/images/leather-boots.jpg"}, CreatedAt: created.Add(120 * time.Hour)},
	}
}

type memoryRepo struct {
	mu    sync.RWMutex
	byKey map[string]domain.Product
}

// NewMemory returns a Repository seeded with the given products.
func NewMemory(seed []domain.Product) Repository {
	r := &memoryRepo{byKey: make(map[string]domain.Product, len(seed))}
	for _, p := range seed {
		r.byKey[p.Key] = p
	}
	return r
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.byKey))
	for _, p := range r.byKey {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byKey {
		if p.ID == id {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Upsert(_ context.Context, product domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byKey[product.Key]; ok {
		product.ID = existing.ID
		product.CreatedAt = existing.CreatedAt
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	r.byKey[product.Key] = product
	clone := product
	return &clone, nil
}
