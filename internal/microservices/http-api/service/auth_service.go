package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/microservices/http-api/dto"
	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"
	"eventhub/internal/middleware/auth"
	"eventhub/pkg/validator"

	"github.com/rs/zerolog"
)

const minPasswordLength = 6

// TokenRevoker tracks revoked session ids.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, req dto.LoginRequest) (*models.User, string, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	// Authenticate resolves a raw token to the active account that owns it.
	Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error)
	TokenTTL() time.Duration
}

type authService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	revoked    TokenRevoker
	bcryptCost int
	log        zerolog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	revoked TokenRevoker,
	bcryptCost int,
	log zerolog.Logger,
) AuthService {
	return &authService{
		users:      users,
		tokens:     tokens,
		revoked:    revoked,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

func (s *authService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Register creates an active user account and signs a session token for it.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, string, error) {
	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)

	if name == "" || email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, "", ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, "", ErrPasswordMismatch
	}
	if len(req.Password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}
	if validator.Var(email, "email") != nil {
		return nil, "", ErrInvalidEmail
	}

	// Check if email exists
	taken, err := s.users.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrUserExists
	}

	hashed, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.RoleUser,
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, _, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, token, nil
}

// Login: authenticates a user and returns a session token upon successful login.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*models.User, string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, "", ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// same cost as a wrong password
			auth.BurnCompare(req.Password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := auth.VerifyPassword(user.Password, req.Password); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.IsSuspended() {
		return nil, "", ErrAccountSuspended
	}

	token, _, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil || s.revoked == nil {
		return nil
	}
	if err := s.revoked.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	if token == "" {
		return nil, nil, ErrNoToken
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			// keep serving if the cache is down
			s.log.Warn().Err(err).Msg("revocation check failed")
		} else if revoked {
			return nil, nil, ErrInvalidToken
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if user.IsSuspended() {
		return nil, nil, ErrAccountSuspended
	}
	return user, claims, nil
}
