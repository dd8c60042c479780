package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/domain"
	"storefront/internal/repository/kv"
	"storefront/internal/service/mockauth"
)

var demo = domain.Credentials{Email: "demo@storefront.test", Password: "Password1"}

// blockingAPI holds Login until release is closed.
type blockingAPI struct {
	API
	started chan struct{}
	release chan struct{}
}

func (b *blockingAPI) Login(ctx context.Context, in domain.Credentials) (*domain.AuthSession, error) {
	close(b.started)
	<-b.release
	return b.API.Login(ctx, in)
}

func TestLogin_BadCredentials(t *testing.T) {
	c := New(mockauth.New(mockauth.Options{}), kv.NewMemory(), nil)

	err := c.Login(context.Background(), domain.Credentials{Email: "bad@x.com", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	s := c.State()
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
	assert.Equal(t, "Invalid credentials", s.Error)
	assert.True(t, s.IsInitialized)
	assert.False(t, s.IsLoading)
}

func TestLogin_SuccessStoresMarkerAndRestores(t *testing.T) {
	ctx := context.Background()
	api := mockauth.New(mockauth.Options{})
	store := kv.NewMemory()

	c := New(api, store, nil)
	require.NoError(t, c.Login(ctx, demo))
	s := c.State()
	require.NotNil(t, s.User)
	assert.True(t, s.IsAuthenticated)
	assert.Empty(t, s.Error)

	marker, err := store.Get(ctx, MarkerKey)
	require.NoError(t, err)
	assert.NotEmpty(t, marker)

	restored := New(api, store, nil)
	assert.False(t, restored.State().IsInitialized)
	restored.Init(ctx)
	rs := restored.State()
	assert.True(t, rs.IsInitialized)
	assert.True(t, rs.IsAuthenticated)
	assert.Equal(t, "user-demo", rs.User.ID)
}

func TestInit_WithoutMarker(t *testing.T) {
	c := New(mockauth.New(mockauth.Options{}), kv.NewMemory(), nil)
	c.Init(context.Background())
	s := c.State()
	assert.True(t, s.IsInitialized)
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
}

func TestInit_StaleMarkerIsDropped(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, MarkerKey, []byte("mock-expired")))

	c := New(mockauth.New(mockauth.Options{}), store, nil)
	c.Init(ctx)

	assert.True(t, c.State().IsInitialized)
	assert.False(t, c.State().IsAuthenticated)
	_, err := store.Get(ctx, MarkerKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// unavailableAPI fails every session check with a non-token error.
type unavailableAPI struct {
	API
}

func (unavailableAPI) Session(context.Context, string) (*domain.User, error) {
	return nil, errors.New("connection refused")
}

func TestInit_BackendErrorKeepsMarker(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	api := mockauth.New(mockauth.Options{})
	require.NoError(t, New(api, store, nil).Login(ctx, demo))

	core, logs := observer.New(zap.WarnLevel)
	c := New(unavailableAPI{API: api}, store, zap.New(core))
	c.Init(ctx)

	assert.True(t, c.State().IsInitialized)
	assert.False(t, c.State().IsAuthenticated)
	assert.Equal(t, 1, logs.FilterMessage("session check failed").Len())
	_, err := store.Get(ctx, MarkerKey)
	require.NoError(t, err)

	again := New(api, store, nil)
	again.Init(ctx)
	assert.True(t, again.State().IsAuthenticated)
}

func TestLogout_ClearsEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	core, logs := observer.New(zap.WarnLevel)
	c := New(mockauth.New(mockauth.Options{FailLogout: true}), store, zap.New(core))
	require.NoError(t, c.Login(ctx, demo))

	c.Logout(ctx)

	s := c.State()
	assert.False(t, s.IsAuthenticated)
	assert.Nil(t, s.User)
	_, err := store.Get(ctx, MarkerKey)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, logs.FilterMessage("logout request failed").Len())
}

func TestRegister_SignsIn(t *testing.T) {
	c := New(mockauth.New(mockauth.Options{}), kv.NewMemory(), nil)
	err := c.Register(context.Background(), domain.Registration{Email: "new@x.com", Password: "pw", Name: "New"})
	require.NoError(t, err)
	assert.True(t, c.State().IsAuthenticated)
	assert.Equal(t, "New", c.State().User.Name)

	err = c.Register(context.Background(), domain.Registration{Email: "new@x.com", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "email already registered", c.State().Error)
	assert.Nil(t, c.State().User)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	c := New(mockauth.New(mockauth.Options{}), kv.NewMemory(), nil)
	name := "Renamed"

	c.UpdateUser(domain.UserPatch{Name: &name})
	assert.Nil(t, c.State().User)

	require.NoError(t, c.Login(ctx, demo))
	c.UpdateUser(domain.UserPatch{Name: &name})
	u := c.State().User
	assert.Equal(t, "Renamed", u.Name)
	assert.Equal(t, demo.Email, u.Email)
	assert.Len(t, u.Addresses, 2)
}

func TestClearError(t *testing.T) {
	c := New(mockauth.New(mockauth.Options{}), kv.NewMemory(), nil)
	_ = c.Login(context.Background(), domain.Credentials{Email: "bad@x.com", Password: "wrong"})
	require.NotEmpty(t, c.State().Error)
	c.ClearError()
	assert.Empty(t, c.State().Error)
}

func TestLogin_SupersededByLogout(t *testing.T) {
	ctx := context.Background()
	api := &blockingAPI{
		API:     mockauth.New(mockauth.Options{}),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	c := New(api, kv.NewMemory(), nil)

	done := make(chan error, 1)
	go func() { done <- c.Login(ctx, demo) }()
	<-api.started
	assert.True(t, c.State().IsLoading)

	c.Logout(ctx)
	close(api.release)

	err := <-done
	assert.True(t, errors.Is(err, ErrSuperseded))
	assert.False(t, c.State().IsAuthenticated)
	assert.Nil(t, c.State().User)
	assert.False(t, c.State().IsLoading)
}

func TestReduce_ExactlyOneOfUserOrError(t *testing.T) {
	u := domain.User{ID: "u1"}
	s := Reduce(State{}, LoginStart{})
	assert.True(t, s.IsLoading)

	ok := Reduce(s, LoginSuccess{User: u})
	assert.NotNil(t, ok.User)
	assert.Empty(t, ok.Error)

	bad := Reduce(Reduce(ok, LoginStart{}), LoginFailure{Message: "nope"})
	assert.Nil(t, bad.User)
	assert.Equal(t, "nope", bad.Error)
	assert.False(t, bad.IsAuthenticated)
}
