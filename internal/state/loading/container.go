// Package loading holds the page-transition indicator and the navigation
// safety net that clears it when a transition is never ended.
package loading

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/timer"
)

const (
	DefaultMessage = "Loading..."
	DefaultReset   = 100 * time.Millisecond
)

type State struct {
	IsLoading bool   `json:"isLoading"`
	Message   string `json:"message"`
	Route     string `json:"route,omitempty"`
}

type Container struct {
	sched  timer.Scheduler
	reset  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	state   State
	pending timer.Timer
	gen     uint64
	closed  bool
}

// New returns an idle container. A non-positive reset uses DefaultReset.
func New(sched timer.Scheduler, reset time.Duration, logger *zap.Logger) *Container {
	if reset <= 0 {
		reset = DefaultReset
	}
	return &Container{sched: sched, reset: reset, logger: logging.OrNop(logger)}
}

// SetLoading is the only way the flag changes. An empty message while
// loading falls back to DefaultMessage; clearing drops the message.
func (c *Container) SetLoading(isLoading bool, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(isLoading, message)
}

func (c *Container) StartPageTransition(message string) {
	c.SetLoading(true, message)
}

func (c *Container) EndPageTransition() {
	c.SetLoading(false, "")
}

// RouteChanged records the new route and arms the reset timer, replacing any
// timer still pending from an earlier change.
func (c *Container) RouteChanged(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Route = path
	if c.pending != nil {
		c.pending.Stop()
	}
	c.gen++
	gen := c.gen
	c.pending = c.sched.AfterFunc(c.reset, func() { c.fire(gen) })
}

func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close cancels the pending reset.
func (c *Container) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Container) fire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.pending = nil
	if c.state.IsLoading {
		c.logger.Debug("navigation reset cleared loading", zap.String("route", c.state.Route))
	}
	c.set(false, "")
}

// caller holds c.mu
func (c *Container) set(isLoading bool, message string) {
	if isLoading && message == "" {
		message = DefaultMessage
	}
	if !isLoading {
		message = ""
	}
	c.state.IsLoading = isLoading
	c.state.Message = message
}
