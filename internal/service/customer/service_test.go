package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	custrepo "storefront/internal/repository/customer"
	tokenrepo "storefront/internal/repository/token"
)

func newTestService() *Service {
	return New(custrepo.NewMemory(), tokenrepo.NewMemory(), "test-secret", time.Hour, nil)
}

func TestRegisterAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, domain.Registration{
		Email:    "User@Example.com",
		Password: " Abcdefg1 ",
		Addresses: []domain.Address{
			{City: "Porto"},
			{City: "Braga"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", registered.User.Email)
	assert.Equal(t, "user", registered.User.Name)
	assert.NotEmpty(t, registered.Token)
	require.Len(t, registered.User.Addresses, 2)
	assert.True(t, registered.User.Addresses[0].IsDefault)
	assert.NotEmpty(t, registered.User.Addresses[1].ID)

	session, err := svc.Login(ctx, domain.Credentials{Email: "user@example.com", Password: "Abcdefg1"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.Registration{Password: "Abcdefg1"})
	require.EqualError(t, err, "email required")

	_, err = svc.Register(ctx, domain.Registration{Email: "a@b.c", Password: "short"})
	require.Error(t, err)

	_, err = svc.Register(ctx, domain.Registration{Email: "a@b.c", Password: "Abcdefg1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, domain.Registration{Email: "A@B.C", Password: "Abcdefg1"})
	require.EqualError(t, err, "email already registered")
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); err == nil {
			t.Fatalf("expected error for case %s", tc.name)
		}
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.Registration{Email: "user@example.com", Password: "Abcdefg1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.Credentials{Email: "user@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, domain.Credentials{Email: "missing@example.com", Password: "Abcdefg1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSession_ValidRevokedAndExpired(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, domain.Registration{Email: "user@example.com", Password: "Abcdefg1"})
	require.NoError(t, err)

	u, err := svc.Session(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, u.ID)

	require.NoError(t, svc.Logout(ctx, registered.Token))
	_, err = svc.Session(ctx, registered.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	again, err := svc.Login(ctx, domain.Credentials{Email: "user@example.com", Password: "Abcdefg1"})
	require.NoError(t, err)
	svc.tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Session(ctx, again.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	n, err := svc.PurgeRevoked(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSession_RejectsGarbageAndForeignSignature(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Session(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = svc.Session(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	other := New(custrepo.NewMemory(), tokenrepo.NewMemory(), "other-secret", time.Hour, nil)
	foreign, err := other.Register(ctx, domain.Registration{Email: "x@example.com", Password: "Abcdefg1"})
	require.NoError(t, err)
	_, err = svc.Session(ctx, foreign.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestLogout_IgnoresUnknownMarkers(t *testing.T) {
	svc := newTestService()
	assert.NoError(t, svc.Logout(context.Background(), ""))
	assert.NoError(t, svc.Logout(context.Background(), "garbage"))
}

type failingTokenRepo struct{ tokenrepo.Repository }

func (failingTokenRepo) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("revocation store down")
}

func TestSession_PropagatesRevocationStoreErrors(t *testing.T) {
	svc := New(custrepo.NewMemory(), failingTokenRepo{tokenrepo.NewMemory()}, "s", time.Hour, nil)
	ctx := context.Background()
	registered, err := svc.Register(ctx, domain.Registration{Email: "u@example.com", Password: "Abcdefg1"})
	require.NoError(t, err)
	_, err = svc.Session(ctx, registered.Token)
	require.EqualError(t, err, "revocation store down")
}
