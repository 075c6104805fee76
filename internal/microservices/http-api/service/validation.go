package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventhub/pkg/validator"
)

// validate runs the struct's validate tags and maps the first violation to a client error.
func validate(ctx context.Context, req any) error {
	err := validator.Validate(ctx, req)
	if err == nil {
		return nil
	}
	var fe *validator.FieldError
	if !errors.As(err, &fe) {
		return fmt.Errorf("validate request: %w", err)
	}
	switch fe.Tag {
	case "required":
		return ErrMissingFields
	case "category":
		return ErrInvalidCategory
	case "event_status", "user_status":
		return ErrInvalidStatus
	case "user_role":
		return ErrInvalidRole
	case "date", "clock":
		return ErrInvalidDateTime
	case "email":
		return ErrInvalidEmail
	case "max":
		return invalid(fmt.Sprintf("%s must be at most %s characters", titleCase(fe.Field), fe.Param))
	default:
		return invalid("Invalid " + fe.Field)
	}
}

// trimmed drops surrounding blanks and turns an empty value into nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// validImageURL trims url and checks it is an http(s) URL; label names the field in the error.
func validImageURL(url *string, label string) (*string, error) {
	u := trimmed(url)
	if u == nil {
		return nil, nil
	}
	if validator.Var(*u, "http_url") != nil {
		return nil, invalid("Invalid " + label + " URL")
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
