package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"identity-server/internal/domain"
	"identity-server/internal/repository"
)

// UserRepository is a mutex-guarded in-memory store keyed on the
// lowercased username. Useful for tests and single-process deployments.
type UserRepository struct {
	mu         sync.RWMutex
	byUsername map[string]*domain.User
	byID       map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byUsername: make(map[string]*domain.User),
		byID:       make(map[string]*domain.User),
	}
}

// Create inserts the user if no case-insensitive username match exists.
// The check and insert happen under one lock, so concurrent creates for
// the same username cannot both win.
func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	key := strings.ToLower(user.Username)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[key]; exists {
		return repository.ErrDuplicateUsername
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byUsername[key] = &stored
	r.byID[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}
