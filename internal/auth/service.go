// Package auth authenticates catalog users: password login, bearer tokens and
// the bootstrap administrator.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"catalog-service/internal/domain"
	"catalog-service/internal/logger"
	"catalog-service/internal/metrics"
	"catalog-service/internal/store"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrUnauthorized means the token is valid but its subject cannot act.
	ErrUnauthorized = errors.New("auth: not authenticated")
)

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Service struct {
	users   store.UserStorer
	hasher  *PasswordHasher
	tokens  *TokenManager
	metrics *metrics.Metrics

	dummyMu   sync.Mutex
	dummyHash string
}

type Option func(*Service)

// WithMetrics counts login outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(users store.UserStorer, hasher *PasswordHasher, tokens *TokenManager, opts ...Option) *Service {
	s := &Service{users: users, hasher: hasher, tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dummy returns a hash used to spend the same work on unknown emails. It is
// computed on first use, detached from the caller's cancellation, and retried
// until it succeeds.
func (s *Service) dummy(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()
	if s.dummyHash != "" {
		return s.dummyHash
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	h, err := s.hasher.Hash(context.WithoutCancel(ctx), hex.EncodeToString(buf))
	if err != nil {
		logger.FromContext(ctx).Warn("dummy password hash unavailable", zap.Error(err))
		return ""
	}
	s.dummyHash = h
	return h
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (token *Token, err error) {
	defer func() { s.metrics.ObserveAuth(loginOutcome(err)) }()

	creds.Normalize()
	if err := domain.Validate(&creds); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if dummy := s.dummy(ctx); dummy != "" {
			_, _ = s.hasher.Verify(ctx, creds.Password, dummy)
		}
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(ctx, creds.Password, user.HashedPassword)
	if err != nil {
		if errors.Is(err, ErrMalformedHash) {
			logger.FromContext(ctx).Error("stored password hash is malformed", zap.String("user_id", user.ID.String()))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !ok || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrValidation):
		return "invalid_input"
	default:
		return "error"
	}
}

// Authenticate resolves a bearer token to an active user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// EnsureAdmin creates an active administrator with the given credentials
// unless an account with that email already exists. It reports whether a user
// was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	creds := domain.Credentials{Email: email, Password: password}
	creds.Normalize()
	if err := domain.Validate(&creds); err != nil {
		return false, err
	}

	_, err := s.users.GetUserByEmail(ctx, creds.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	hashed, err := s.hasher.Hash(ctx, creds.Password)
	if err != nil {
		return false, fmt.Errorf("auth: hash admin password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("auth: generate user id: %w", err)
	}
	_, err = s.users.CreateUser(ctx, &domain.User{
		ID:             id,
		Email:          creds.Email,
		HashedPassword: hashed,
		Role:           domain.RoleAdmin,
		IsActive:       true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
