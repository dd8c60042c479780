package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

const issuer = "storefront"

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenManager signs HS256 session markers and consults the revocation list.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
	repo   tokenrepo.Repository
	now    func() time.Time
}

func newTokenManager(secret []byte, ttl time.Duration, repo tokenrepo.Repository) *tokenManager {
	return &tokenManager{secret: secret, ttl: ttl, repo: repo, now: time.Now}
}

func (m *tokenManager) Issue(u domain.User) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := tokenClaims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *tokenManager) Validate(ctx context.Context, raw string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	revoked, err := m.repo.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (m *tokenManager) Revoke(ctx context.Context, raw string) error {
	claims, err := m.Validate(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return nil
		}
		return err
	}
	return m.repo.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
