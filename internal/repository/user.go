package repository

import (
	"context"
	"errors"

	"identity-server/internal/domain"
)

var (
	// ErrDuplicateUsername is returned by Create when a user with the same
	// username already exists. The match is case-insensitive.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrNotFound is returned by lookups when no user matches.
	ErrNotFound = errors.New("user not found")
)

// UserStore defines persistence operations for User entities. Username
// lookups and the uniqueness guarantee are case-insensitive; the stored
// username keeps its original casing. Create must be atomic with respect
// to the uniqueness check: of two concurrent creates for the same
// username at most one succeeds.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
