package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"rentease-service/internal/repository"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = repository.ErrNotFound
)

// Field rules shared with the request binding tags.
const (
	contactNumberRule = "len=10,number"
	pincodeRule       = "len=6,number"
)

var validate = validator.New()

// matches reports whether v satisfies a validator rule.
func matches(v, rule string) bool {
	return validate.Var(v, rule) == nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// QueryCache stores list query results. A nil QueryCache disables caching.
type QueryCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}
