package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventhub/internal/microservices/http-api/models"
	"eventhub/internal/microservices/http-api/repository"
	"eventhub/internal/middleware/auth"
	"eventhub/pkg/validator"
)

// BootstrapAdmin makes sure an active admin account exists for email. An existing account
// is promoted and reactivated (its password is left alone); otherwise a new one is created.
// It reports whether an account was created.
func BootstrapAdmin(ctx context.Context, users repository.UserRepository, name, email, password string, bcryptCost int) (*models.User, bool, error) {
	email = normalizeEmail(email)
	if validator.Var(email, "email") != nil {
		return nil, false, ErrInvalidEmail
	}

	existing, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := users.Update(ctx, existing.ID, map[string]any{
			"role":   models.RoleAdmin,
			"status": models.UserStatusActive,
		}); err != nil {
			return nil, false, fmt.Errorf("promote %s: %w", email, err)
		}
		existing.Role = models.RoleAdmin
		existing.Status = models.UserStatusActive
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Administrator"
	}
	if len(password) < minPasswordLength {
		return nil, false, ErrPasswordTooShort
	}
	hashed, err := auth.HashPassword(password, bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		Status:   models.UserStatusActive,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create admin: %w", err)
	}
	return user, true, nil
}
