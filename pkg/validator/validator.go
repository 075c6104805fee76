package validator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"eventhub/internal/microservices/http-api/models"

	"github.com/go-playground/validator/v10"
)

var global *validator.Validate

var (
	categories   = set(models.EventCategories)
	eventStatus  = set(models.EventStatuses)
	userRoles    = set(models.UserRoles)
	userStatuses = set(models.UserStatuses)
)

func init() {
	SetValidator(New())
}

// New returns a validator with the domain tags registered:
// category, event_status, user_role, user_status, date (YYYY-MM-DD) and clock (HH:MM).
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("category", oneOf(categories))
	_ = v.RegisterValidation("event_status", oneOf(eventStatus))
	_ = v.RegisterValidation("user_role", oneOf(userRoles))
	_ = v.RegisterValidation("user_status", oneOf(userStatuses))
	_ = v.RegisterValidation("date", layout(models.DateLayout))
	_ = v.RegisterValidation("clock", layout(models.TimeLayout))
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func set(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func oneOf(allowed map[string]bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return allowed[fl.Field().String()]
	}
}

func layout(l string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := time.Parse(l, fl.Field().String())
		return err == nil
	}
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// FieldError is the first rule a value broke.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e *FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Field, e.Tag)
}

// Validate checks structure against its validate tags and reports the first violation.
func Validate(ctx context.Context, structure any) error {
	return firstError(Validator().StructCtx(ctx, structure))
}

// Var checks a single value against tag.
func Var(value any, tag string) error {
	return firstError(Validator().Var(value, tag))
}

func firstError(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return err
	}
	ve := vErrors[0]
	return &FieldError{Field: ve.Field(), Tag: ve.Tag(), Param: ve.Param()}
}
