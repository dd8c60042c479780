package token

import (
	"context"
	"sync"
	"time"
)

type memoryRepo struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemory() Repository {
	return &memoryRepo{revoked: make(map[string]time.Time)}
}

func (r *memoryRepo) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	r.revoked[tokenID] = expiresAt
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	_, ok := r.revoked[tokenID]
	r.mu.RUnlock()
	return ok, nil
}

func (r *memoryRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, exp := range r.revoked {
		if exp.Before(now) {
			delete(r.revoked, id)
			n++
		}
	}
	return n, nil
}
