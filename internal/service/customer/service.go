package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/logging"
	custrepo "storefront/internal/repository/customer"
	tokenrepo "storefront/internal/repository/token"
)

// ErrEmailTaken is returned by Register for an address that already has an account.
var ErrEmailTaken = errors.New("email already registered")

// Service is the account-backed authentication API: bcrypt passwords and
// signed session markers.
type Service struct {
	repo        custrepo.Repository
	tokens      *tokenManager
	logger      *zap.Logger
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo custrepo.Repository, tokens tokenrepo.Repository, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Service{
		repo:        repo,
		tokens:      newTokenManager([]byte(secret), ttl, tokens),
		logger:      logging.OrNop(logger),
		passwordMin: 8,
	}
}

// Register creates a new account and signs the shopper in.
func (s *Service) Register(ctx context.Context, in domain.Registration) (*domain.AuthSession, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, errors.New("email required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	addresses := make([]domain.Address, 0, len(in.Addresses))
	for _, a := range in.Addresses {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		addresses = append(addresses, a)
	}
	if len(addresses) > 0 && !hasDefault(addresses) {
		addresses[0].IsDefault = true
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	created, err := s.repo.Create(ctx, domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashed),
		Addresses:    addresses,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("customer registered", zap.String("customerId", created.ID))
	return s.issue(*created)
}

// Login validates credentials and returns a signed session.
func (s *Service) Login(ctx context.Context, in domain.Credentials) (*domain.AuthSession, error) {
	password := strings.TrimSpace(in.Password)
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(*u)
}

// Logout revokes the marker. Unknown or expired markers are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, token)
}

// Session returns the user bound to a valid marker.
func (s *Service) Session(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	claims, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// PurgeRevoked drops revocation entries whose markers have expired anyway.
func (s *Service) PurgeRevoked(ctx context.Context) (int64, error) {
	return s.tokens.repo.PurgeExpired(ctx, s.tokens.now())
}

func (s *Service) issue(u domain.User) (*domain.AuthSession, error) {
	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &domain.AuthSession{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func hasDefault(addresses []domain.Address) bool {
	for _, a := range addresses {
		if a.IsDefault {
			return true
		}
	}
	return false
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
