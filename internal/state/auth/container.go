package auth

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/repository/kv"
)

// MarkerKey is where the opaque session marker is kept. The user itself is
// never stored.
const MarkerKey = "auth-token"

// ErrSuperseded is returned when a later auth call finished first; the
// completed call had no effect on the state.
var ErrSuperseded = errors.New("superseded by a newer auth request")

// API is the authentication backend.
type API interface {
	Login(ctx context.Context, in domain.Credentials) (*domain.AuthSession, error)
	Register(ctx context.Context, in domain.Registration) (*domain.AuthSession, error)
	Logout(ctx context.Context, token string) error
	Session(ctx context.Context, token string) (*domain.User, error)
}

// Container serializes auth transitions. Backend calls run outside the lock;
// each login, register or logout bumps an epoch and a call that completes
// under an older epoch is dropped.
type Container struct {
	api    API
	store  kv.Store
	logger *zap.Logger

	mu     sync.Mutex
	state  State
	epoch  uint64
	marker string
}

func New(api API, store kv.Store, logger *zap.Logger) *Container {
	return &Container{api: api, store: store, logger: logging.OrNop(logger)}
}

// Init restores a previous session from the stored marker. The container is
// initialized afterwards whatever the outcome.
func (c *Container) Init(ctx context.Context) {
	c.mu.Lock()
	epoch := c.epoch
	c.mu.Unlock()

	marker, user, rejected := c.restore(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		c.state = Reduce(c.state, Initialized{Superseded: true})
		return
	}
	if rejected {
		c.deleteMarker(ctx)
	}
	if user != nil {
		c.marker = marker
	}
	c.state = Reduce(c.state, Initialized{User: user})
}

// restore reports rejected when a stored marker exists but the backend
// declared it invalid.
func (c *Container) restore(ctx context.Context) (string, *domain.User, bool) {
	raw, err := c.store.Get(ctx, MarkerKey)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("auth marker load failed", zap.Error(err))
		}
		return "", nil, false
	}
	marker := string(raw)
	user, err := c.api.Session(ctx, marker)
	if errors.Is(err, domain.ErrInvalidToken) {
		c.logger.Info("stored session rejected", zap.Error(err))
		return "", nil, true
	}
	if err != nil {
		// marker is kept for the next attempt
		c.logger.Warn("session check failed", zap.Error(err))
		return "", nil, false
	}
	return marker, user, false
}

// Login signs in with credentials. On failure the error is both returned and
// kept in the state for display.
func (c *Container) Login(ctx context.Context, in domain.Credentials) error {
	epoch := c.begin(LoginStart{})
	sess, err := c.api.Login(ctx, in)
	return c.complete(ctx, epoch, sess, err, func(u domain.User) Action {
		return LoginSuccess{User: u}
	}, func(msg string) Action {
		return LoginFailure{Message: msg}
	})
}

// Register creates an account and signs in.
func (c *Container) Register(ctx context.Context, in domain.Registration) error {
	epoch := c.begin(RegisterStart{})
	sess, err := c.api.Register(ctx, in)
	return c.complete(ctx, epoch, sess, err, func(u domain.User) Action {
		return RegisterSuccess{User: u}
	}, func(msg string) Action {
		return RegisterFailure{Message: msg}
	})
}

// Logout clears the local session immediately and then tells the backend.
// Backend failures are only logged.
func (c *Container) Logout(ctx context.Context) {
	c.mu.Lock()
	c.epoch++
	marker := c.marker
	c.marker = ""
	c.state = Reduce(c.state, Logout{})
	c.deleteMarker(ctx)
	c.mu.Unlock()

	if marker == "" {
		return
	}
	if err := c.api.Logout(ctx, marker); err != nil {
		c.logger.Warn("logout request failed", zap.Error(err))
	}
}

// UpdateUser merges patch into the signed-in user. Without a user it does nothing.
func (c *Container) UpdateUser(patch domain.UserPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, UpdateUser{Patch: patch})
}

func (c *Container) ClearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, ClearError{})
}

// State returns a copy safe to hand out.
func (c *Container) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.User != nil {
		u := *s.User
		u.Addresses = append([]domain.Address(nil), u.Addresses...)
		s.User = &u
	}
	return s
}

func (c *Container) begin(start Action) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.state = Reduce(c.state, start)
	return c.epoch
}

func (c *Container) complete(
	ctx context.Context,
	epoch uint64,
	sess *domain.AuthSession,
	err error,
	success func(domain.User) Action,
	failure func(string) Action,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		c.logger.Debug("auth completion superseded", zap.Uint64("epoch", epoch), zap.Uint64("current", c.epoch))
		return ErrSuperseded
	}
	if err != nil {
		c.state = Reduce(c.state, failure(message(err)))
		return err
	}
	c.marker = sess.Token
	if err := c.store.Set(ctx, MarkerKey, []byte(sess.Token)); err != nil {
		c.logger.Warn("auth marker save failed", zap.Error(err))
	}
	c.state = Reduce(c.state, success(sess.User))
	return nil
}

func (c *Container) deleteMarker(ctx context.Context) {
	if err := c.store.Delete(ctx, MarkerKey); err != nil {
		c.logger.Warn("auth marker delete failed", zap.Error(err))
	}
}

func message(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Request cancelled"
	default:
		return err.Error()
	}
}
