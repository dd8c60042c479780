// Package mockauth is the simulated authentication backend used for demos and
// front-end development: a handful of fixture accounts, an artificial network
// delay and no persistence beyond the process.
package mockauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

// ErrInvalidCredentials carries the message shown on the login form.
var ErrInvalidCredentials = fmt.Errorf("Invalid credentials: %w", domain.ErrInvalidCredentials)

// ErrLogoutFailed is returned by Logout when the service is told to fail it.
var ErrLogoutFailed = errors.New("logout request failed")

type account struct {
	password string
	user     domain.User
}

// Options tune the simulation.
type Options struct {
	Latency    time.Duration
	FailLogout bool
	Logger     *zap.Logger
}

// Service answers auth calls from an in-memory table.
type Service struct {
	latency    time.Duration
	failLogout bool
	logger     *zap.Logger

	mu       sync.Mutex
	accounts map[string]account
	sessions map[string]string
}

// New seeds the fixture accounts.
func New(opts Options) *Service {
	s := &Service{
		latency:    opts.Latency,
		failLogout: opts.FailLogout,
		logger:     logging.OrNop(opts.Logger),
		accounts:   make(map[string]account),
		sessions:   make(map[string]string),
	}
	for _, f := range Fixtures() {
		s.accounts[f.Email] = account{password: f.Password, user: f.User}
	}
	return s
}

// Fixture is a demo login.
type Fixture struct {
	Email    string
	Password string
	User     domain.User
}

// Fixtures lists the demo accounts every Service starts with.
func Fixtures() []Fixture {
	created := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return []Fixture{
		{
			Email:    "demo@storefront.test",
			Password: "Password1",
			User: domain.User{
				ID:    "user-demo",
				Email: "demo@storefront.test",
				Name:  "Demo Shopper",
				Addresses: []domain.Address{
					{ID: "addr-home", Label: "Home", Name: "Demo Shopper", Street: "12 Market Street", City: "Springfield", PostalCode: "12345", Country: "US", IsDefault: true},
					{ID: "addr-work", Label: "Work", Name: "Demo Shopper", Street: "400 Commerce Ave", City: "Springfield", PostalCode: "12346", Country: "US"},
				},
				Preferences: domain.Preferences{Currency: "USD", Language: "en", Newsletter: true},
				CreatedAt:   created,
			},
		},
		{
			Email:    "admin@storefront.test",
			Password: "Admin1234",
			User: domain.User{
				ID:          "user-admin",
				Email:       "admin@storefront.test",
				Name:        "Store Admin",
				Addresses:   []domain.Address{},
				Preferences: domain.Preferences{Currency: "USD", Language: "en"},
				CreatedAt:   created,
			},
		},
	}
}

func (s *Service) Login(ctx context.Context, in domain.Credentials) (*domain.AuthSession, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[email]
	if !ok || acc.password != in.Password {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(acc.user), nil
}

func (s *Service) Register(ctx context.Context, in domain.Registration) (*domain.AuthSession, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, errors.New("email and password required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		return nil, errors.New("email already registered")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	addresses := append([]domain.Address{}, in.Addresses...)
	for i := range addresses {
		if addresses[i].ID == "" {
			addresses[i].ID = uuid.NewString()
		}
	}
	u := domain.User{
		ID:          uuid.NewString(),
		Email:       email,
		Name:        name,
		Addresses:   addresses,
		Preferences: domain.Preferences{Currency: "USD", Language: "en"},
		CreatedAt:   time.Now().UTC(),
	}
	s.accounts[email] = account{password: in.Password, user: u}
	s.logger.Info("mock account registered", zap.String("userId", u.ID))
	return s.openSession(u), nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	if s.failLogout {
		return ErrLogoutFailed
	}
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

func (s *Service) Session(ctx context.Context, token string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	acc, ok := s.accounts[email]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	u := acc.user
	return &u, nil
}

// caller holds s.mu
func (s *Service) openSession(u domain.User) *domain.AuthSession {
	token := "mock-" + uuid.NewString()
	s.sessions[token] = u.Email
	return &domain.AuthSession{User: u, Token: token}
}

func (s *Service) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
