package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"identity-server/internal/auth"
	"identity-server/internal/domain"
	"identity-server/internal/repository"
)

var (
	// ErrInvalidInput indicates a required field was missing or empty after trimming.
	ErrInvalidInput = errors.New("username and password are required")
	// ErrInvalidCredentials covers both unknown username and wrong password,
	// so a caller cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername is returned when registering a username that is
	// already taken, including the create-time race the validation check
	// cannot see.
	ErrDuplicateUsername = errors.New("username is already taken")
	// ErrInvalidToken covers malformed, tampered and expired tokens as well
	// as tokens whose user no longer exists.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError carries every violated policy rule so the caller can
// display them all at once.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, ", ")
}

// AuthResult is the outcome of a successful register or login: the user
// without its password hash plus a freshly issued bearer token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService orchestrates registration, authentication and token
// resolution. It is the only entry point the transport layer calls.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

type authService struct {
	users  repository.UserStore
	hasher *auth.PasswordHasher
	tokens *auth.TokenService
}

func NewAuthService(users repository.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenService) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *authService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	reasons := auth.ValidateUsername(username)
	if len(reasons) == 0 {
		// Advisory only; Create re-checks under the store's own guard.
		if _, err := s.users.GetByUsername(ctx, username); err == nil {
			reasons = append(reasons, "username is already taken")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
	}
	reasons = append(reasons, auth.ValidatePassword(password, auth.PolicyStrict)...)
	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Sanitized(), Token: token}, nil
}

func (s *authService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user.Sanitized(), nil
}
