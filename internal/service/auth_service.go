package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"asha/internal/auth"
	apperrors "asha/internal/errors"
	"asha/internal/model"
	"asha/internal/repository"
)

const bcryptCost = 10

// AuthService handles credential storage and token issuing.
type AuthService interface {
	// CreateUser registers a user. It fails with ErrUserLimitReached or
	// ErrEmailRegistered.
	CreateUser(ctx context.Context, name, email, password string) (*model.User, error)
	// VerifyCredentials returns the user when email and password match and
	// (nil, nil) otherwise; an unknown email and a wrong password look the same.
	VerifyCredentials(ctx context.Context, email, password string) (*model.User, error)
	Signup(ctx context.Context, name, email, password string) (token string, user *model.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
	// Refresh swaps the presented token for a fresh 24h one and revokes the old.
	Refresh(ctx context.Context, claims *auth.Claims) (string, error)
	IsRevoked(ctx context.Context, tokenID string) bool
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	ids        *idGenerator
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		ids:        &idGenerator{},
	}
}

// CreateUser hashes the password and stores a new user.
func (s *authService) CreateUser(ctx context.Context, name, email, password string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           s.ids.next(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user, model.MaxUsers); err != nil {
		if errors.Is(err, apperrors.ErrEmailRegistered) || errors.Is(err, apperrors.ErrUserLimitReached) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// VerifyCredentials checks email and password against the store.
func (s *authService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return user, nil
}

// Signup registers a user and issues a token for it.
func (s *authService) Signup(ctx context.Context, name, email, password string) (string, *model.User, error) {
	user, err := s.CreateUser(ctx, name, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Login authenticates a user and issues a token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrInvalidCredentials
	}
	return s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.RemainingTTL(claims))
}

// Refresh issues a new token for the holder of claims. The old token is
// revoked so only one of the pair stays usable.
func (s *authService) Refresh(ctx context.Context, claims *auth.Claims) (string, error) {
	if claims == nil || claims.ID == "" {
		return "", apperrors.ErrInvalidCredentials
	}
	token, err := s.jwtService.GenerateToken(claims.UserID, claims.Email)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.RemainingTTL(claims)); err != nil {
		return "", fmt.Errorf("revoke previous token: %w", err)
	}
	return token, nil
}

// IsRevoked reports whether a token id was logged out.
func (s *authService) IsRevoked(ctx context.Context, tokenID string) bool {
	revoked, _ := s.tokenStore.IsRevoked(ctx, tokenID)
	return revoked
}

// idGenerator hands out millisecond-timestamp ids, bumping by one when two
// users are created within the same millisecond.
type idGenerator struct {
	mu   sync.Mutex
	last int64
}

func (g *idGenerator) next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := time.Now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return strconv.FormatInt(id, 10)
}
