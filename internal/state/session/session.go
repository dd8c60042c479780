// Package session composes the per-visitor state containers and keeps them
// alive between requests.
package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/internal/repository/kv"
	"storefront/internal/state/auth"
	"storefront/internal/state/autohide"
	"storefront/internal/state/cart"
	"storefront/internal/state/loading"
	"storefront/internal/timer"
)

// Deps are shared by every session a Manager creates.
type Deps struct {
	Store           kv.Store
	AuthAPI         auth.API
	Scheduler       timer.Scheduler
	Navbar          autohide.Config
	NavigationReset time.Duration
	IdleTTL         time.Duration
	Logger          *zap.Logger
}

// Session nests the containers UI, Loading, Auth, Cart. Inner containers may
// rely on outer ones being ready, so they are built in that order and torn
// down in reverse.
type Session struct {
	ID      string
	UI      *autohide.Controller
	Loading *loading.Container
	Auth    *auth.Container
	Cart    *cart.Container
}

// KeyPrefix scopes a session's stored keys.
func KeyPrefix(id string) string {
	return "session:" + id + ":"
}

func open(ctx context.Context, id string, deps Deps) *Session {
	logger := deps.Logger.With(zap.String("session", id))
	store := kv.WithPrefix(deps.Store, KeyPrefix(id))

	s := &Session{ID: id}
	s.UI = autohide.NewController(deps.Navbar, deps.Scheduler)
	s.Loading = loading.New(deps.Scheduler, deps.NavigationReset, logger)
	s.Auth = auth.New(deps.AuthAPI, store, logger)
	s.Auth.Init(ctx)
	s.Cart = cart.New(ctx, store, logger)
	return s
}

// Close stops the timers owned by the session.
func (s *Session) Close() {
	s.Loading.Close()
	s.UI.Close()
}
