package autohide

import (
	"sync"

	"storefront/internal/timer"
)

// Controller runs the machine against a scheduler. At most one hide timer is
// pending at a time.
type Controller struct {
	cfg   Config
	sched timer.Scheduler

	mu      sync.Mutex
	state   State
	pending timer.Timer
	closed  bool
}

func NewController(cfg Config, sched timer.Scheduler) *Controller {
	return &Controller{cfg: cfg, sched: sched, state: Initial()}
}

// Handle feeds ev to the machine and returns the resulting state.
func (c *Controller) Handle(ev Event) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state
	}
	next, effects := Step(c.state, ev, c.cfg)
	c.state = next
	for _, eff := range effects {
		switch eff := eff.(type) {
		case CancelHide:
			c.stop()
		case ScheduleHide:
			c.stop()
			gen := eff.Generation
			c.pending = c.sched.AfterFunc(eff.After, func() {
				c.Handle(HideTimerFired{Generation: gen})
			})
		}
	}
	return c.state
}

func (c *Controller) Scroll(y float64) State { return c.Handle(Scrolled{Y: y}) }
func (c *Controller) Hover(on bool) State { return c.Handle(HoverChanged{Hovering: on}) }
func (c *Controller) SetExpanded(on bool) State { return c.Handle(ExpandedChanged{Expanded: on}) }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Config() Config {
	return c.cfg
}

// Close stops any pending timer; later events are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stop()
}

// caller holds c.mu
func (c *Controller) stop() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}
