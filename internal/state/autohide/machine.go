// Package autohide decides when the navigation bar is shown. Step is a pure
// state machine; Controller connects its effects to real timers.
package autohide

import (
	"fmt"
	"time"
)

type Config struct {
	// At or above this offset (scrolled less than it) the bar is always shown.
	TopThreshold float64 `json:"topThreshold"`
	// Scrolling down past this offset hides the bar immediately.
	HideThreshold float64       `json:"hideThreshold"`
	HideDelay     time.Duration `json:"hideDelay"`
}

func DefaultConfig() Config {
	return Config{TopThreshold: 50, HideThreshold: 100, HideDelay: 2 * time.Second}
}

type State struct {
	Visible     bool    `json:"visible"`
	LastScrollY float64 `json:"lastScrollY"`
	Hovering    bool    `json:"hovering"`
	Expanded    bool    `json:"expanded"`
	PendingHide bool    `json:"pendingHide"`
	Generation  uint64  `json:"-"`
}

// Initial is a visible bar at the top of the page.
func Initial() State {
	return State{Visible: true}
}

type Event interface{ autohideEvent() }

type (
	Scrolled        struct{ Y float64 }
	HoverChanged    struct{ Hovering bool }
	ExpandedChanged struct{ Expanded bool }
	HideTimerFired  struct{ Generation uint64 }
)

func (Scrolled) autohideEvent()        {}
func (HoverChanged) autohideEvent()    {}
func (ExpandedChanged) autohideEvent() {}
func (HideTimerFired) autohideEvent()  {}

type Effect interface{ autohideEffect() }

type (
	// ScheduleHide asks for HideTimerFired{Generation} after After.
	ScheduleHide struct {
		After      time.Duration
		Generation uint64
	}
	CancelHide struct{}
)

func (ScheduleHide) autohideEffect() {}
func (CancelHide) autohideEffect()   {}

// Step applies ev and returns the effects the caller must perform.
func Step(s State, ev Event, cfg Config) (State, []Effect) {
	switch ev := ev.(type) {
	case Scrolled:
		prev := s.LastScrollY
		s.LastScrollY = ev.Y
		switch {
		case ev.Y <= cfg.TopThreshold:
			s.Visible = true
			return cancel(s)
		case ev.Y < prev:
			s.Visible = true
			if s.held() {
				return cancel(s)
			}
			return schedule(s, cfg)
		case ev.Y > prev && ev.Y > cfg.HideThreshold:
			if s.held() {
				return s, nil
			}
			s.Visible = false
			return cancel(s)
		default:
			return s, nil
		}

	case HoverChanged:
		s.Hovering = ev.Hovering
		return release(s, cfg, ev.Hovering)

	case ExpandedChanged:
		s.Expanded = ev.Expanded
		return release(s, cfg, ev.Expanded)

	case HideTimerFired:
		if !s.PendingHide || ev.Generation != s.Generation {
			return s, nil
		}
		s.PendingHide = false
		if !s.held() && s.LastScrollY > cfg.TopThreshold {
			s.Visible = false
		}
		return s, nil

	default:
		panic(fmt.Sprintf("autohide: unhandled event %T", ev))
	}
}

// held reports whether hover or an open menu keeps the bar up.
func (s State) held() bool {
	return s.Hovering || s.Expanded
}

func release(s State, cfg Config, on bool) (State, []Effect) {
	if on {
		s.Visible = true
		return cancel(s)
	}
	if s.held() || s.LastScrollY <= cfg.TopThreshold || !s.Visible {
		return s, nil
	}
	return schedule(s, cfg)
}

func schedule(s State, cfg Config) (State, []Effect) {
	s.Generation++
	s.PendingHide = true
	return s, []Effect{ScheduleHide{After: cfg.HideDelay, Generation: s.Generation}}
}

func cancel(s State) (State, []Effect) {
	if !s.PendingHide {
		return s, nil
	}
	s.PendingHide = false
	return s, []Effect{CancelHide{}}
}
