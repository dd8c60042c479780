package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/repository/kv"
)

// StorageKey is where the serialized item list lives in the store.
const StorageKey = "cart"

// Snapshot is a consistent read of items and totals.
type Snapshot struct {
	Items           []domain.CartItem `json:"items"`
	TotalItems      int               `json:"totalItems"`
	TotalPriceCents int64             `json:"totalPrice"`
	Hydrated        bool              `json:"-"`
}

// Container serializes cart mutations and mirrors every change into the store.
// Storage failures are logged and never surface to callers.
type Container struct {
	mu     sync.Mutex
	state  State
	store  kv.Store
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Container)

// WithClock overrides the time source used for line ids and addedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

// New builds a container and hydrates it from store.
func New(ctx context.Context, store kv.Store, logger *zap.Logger, opts ...Option) *Container {
	c := &Container{
		state:  State{Items: []domain.CartItem{}},
		store:  store,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.hydrate(ctx)
	return c
}

func (c *Container) hydrate(ctx context.Context) {
	var items []domain.CartItem
	raw, err := c.store.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		c.logger.Warn("cart load failed", zap.Error(err))
	default:
		if err := json.Unmarshal(raw, &items); err != nil {
			c.logger.Warn("cart decode failed", zap.Error(err))
			items = nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, Hydrate{Items: items}, c.now())
}

// Add puts quantity units of product into the cart, merging with an existing
// line for the same variant.
func (c *Container) Add(ctx context.Context, product domain.Product, quantity int, variant string) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	c.dispatch(ctx, AddItem{Product: product, Quantity: quantity, Variant: variant})
	return nil
}

func (c *Container) Remove(ctx context.Context, id string) {
	c.dispatch(ctx, RemoveItem{ID: id})
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (c *Container) UpdateQuantity(ctx context.Context, id string, quantity int) {
	c.dispatch(ctx, UpdateQuantity{ID: id, Quantity: quantity})
}

func (c *Container) UpdateVariant(ctx context.Context, id, variant string) {
	c.dispatch(ctx, UpdateVariant{ID: id, Variant: variant})
}

func (c *Container) Clear(ctx context.Context) {
	c.dispatch(ctx, Clear{})
}

// Items returns a copy of the current lines in insertion order.
func (c *Container) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartItem{}, c.state.Items...)
}

func (c *Container) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalItems(c.state.Items)
}

// TotalPrice is the cart total in minor units.
func (c *Container) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalPrice(c.state.Items)
}

func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Items:           append([]domain.CartItem{}, c.state.Items...),
		TotalItems:      totalItems(c.state.Items),
		TotalPriceCents: totalPrice(c.state.Items),
		Hydrated:        c.state.Hydrated,
	}
}

func (c *Container) dispatch(ctx context.Context, a Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, a, c.now())
	if c.state.Hydrated {
		c.persist(ctx)
	}
}

// caller holds c.mu
func (c *Container) persist(ctx context.Context) {
	raw, err := json.Marshal(c.state.Items)
	if err != nil {
		c.logger.Error("cart encode failed", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, StorageKey, raw); err != nil {
		c.logger.Warn("cart save failed", zap.Error(err), zap.Int("items", len(c.state.Items)))
	}
}
