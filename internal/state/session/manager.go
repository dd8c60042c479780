package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/timer"
)

const DefaultIdleTTL = 30 * time.Minute

type entry struct {
	once     sync.Once
	sess     *Session
	lastSeen time.Time
}

// Manager owns the live sessions. Sessions idle longer than the TTL are
// closed by Sweep; their stored cart and marker stay in the store and are
// picked up again when the visitor returns.
type Manager struct {
	deps Deps
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func NewManager(deps Deps) *Manager {
	deps.Logger = logging.OrNop(deps.Logger)
	if deps.Scheduler == nil {
		deps.Scheduler = timer.Real{}
	}
	if deps.IdleTTL <= 0 {
		deps.IdleTTL = DefaultIdleTTL
	}
	return &Manager{deps: deps, now: time.Now, entries: make(map[string]*entry)}
}

// Get returns the session for id, opening it on first use. Concurrent first
// requests for one id share a single open. The session outlives the request,
// so opening ignores ctx cancellation.
func (m *Manager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	e, ok := m.entries[id]
	if !ok {
		e = &entry{}
		m.entries[id] = e
	}
	e.lastSeen = m.now()
	m.mu.Unlock()

	e.once.Do(func() {
		e.sess = open(context.WithoutCancel(ctx), id, m.deps)
		m.deps.Logger.Debug("session opened", zap.String("session", id))
	})
	if e.sess == nil {
		// evicted before it was opened
		return m.Get(ctx, id)
	}
	return e.sess
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep closes sessions not seen since the idle TTL and reports how many.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.deps.IdleTTL)
	var stale []*entry

	m.mu.Lock()
	for id, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e)
			delete(m.entries, id)
		}
	}
	m.mu.Unlock()

	for _, e := range stale {
		e.once.Do(func() {})
		if e.sess != nil {
			e.sess.Close()
		}
	}
	if len(stale) > 0 {
		m.deps.Logger.Info("idle sessions evicted", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps every half TTL until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	t := time.NewTicker(m.deps.IdleTTL / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			m.Sweep()
		}
	}
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.deps.Store.Ping(ctx)
}

// Close closes every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	entries := m.entries
	m.entries = make(map[string]*entry)
	m.mu.Unlock()

	for _, e := range entries {
		e.once.Do(func() {})
		if e.sess != nil {
			e.sess.Close()
		}
	}
}
