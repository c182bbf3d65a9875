package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"identity-server/internal/auth"
	"identity-server/internal/domain"
	"identity-server/internal/repository/memory"
)

func newTestService(t *testing.T) AuthService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthService(memory.NewUserRepository(), auth.NewPasswordHasher(bcrypt.MinCost), tokens)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	result, err := svc.Register(context.Background(), "bob_01", "Str0ngP@ss")
	require.NoError(t, err)
	assert.NotEmpty(t, result.User.ID)
	assert.Equal(t, "bob_01", result.User.Username)
	assert.Empty(t, result.User.PasswordHash)
	assert.NotEmpty(t, result.Token)
	assert.False(t, result.User.CreatedAt.IsZero())
}

func TestRegister_TrimsInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	result, err := svc.Register(context.Background(), "  bob_01  ", " Str0ngP@ss ")
	require.NoError(t, err)
	assert.Equal(t, "bob_01", result.User.Username)

	_, err = svc.Login(context.Background(), "bob_01", "Str0ngP@ss")
	assert.NoError(t, err)
}

func TestRegister_EmptyInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "Str0ngP@ss")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Register(ctx, "bob_01", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegister_ValidationAccumulates(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.Register(context.Background(), "x!", "weak")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	// both username and password reasons show up in one list
	assert.GreaterOrEqual(t, len(validationErr.Reasons), 2)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob_01", "Str0ngP@ss")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob_01", "Str0ngP@ss")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Reasons, "username is already taken")

	// differing case is still a duplicate
	_, err = svc.Register(ctx, "BOB_01", "Str0ngP@ss")
	require.ErrorAs(t, err, &validationErr)
}

func TestRegister_Concurrent(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "contended", "Str0ngP@ss")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, failures int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		failures++
		// losers see either the validation-time exists check or the
		// create-time duplicate, depending on interleaving
		var validationErr *ValidationError
		ok := errors.Is(err, ErrDuplicateUsername) || errors.As(err, &validationErr)
		assert.True(t, ok, "unexpected error: %v", err)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, failures)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Str0ngP@ss")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice", "Str0ngP@ss")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.User.Username)
	assert.Empty(t, result.User.PasswordHash)
	assert.NotEmpty(t, result.Token)
}

func TestLogin_NoEnumeration(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Str0ngP@ss")
	require.NoError(t, err)

	_, wrongPass := svc.Login(ctx, "alice", "wrongpass")
	_, noUser := svc.Login(ctx, "nosuchuser", "anything")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, noUser, ErrInvalidCredentials)
	// identical message, nothing to distinguish the two cases
	assert.Equal(t, wrongPass.Error(), noUser.Error())
}

func TestLogin_EmptyInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "  ", "Str0ngP@ss")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestResolve_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "bob_01", "Str0ngP@ss")
	require.NoError(t, err)

	user, err := svc.Resolve(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)
	assert.Equal(t, "bob_01", user.Username)
	assert.Empty(t, user.PasswordHash)
}

func TestResolve_InvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	for _, bad := range []string{"", "not.a.jwt", "garbage"} {
		_, err := svc.Resolve(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestResolve_UnknownUser(t *testing.T) {
	t.Parallel()

	// token signed with the same secret but pointing at a user the store
	// never saw
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	svc := NewAuthService(memory.NewUserRepository(), auth.NewPasswordHasher(bcrypt.MinCost), tokens)

	token, err := tokens.Issue(&domain.User{ID: "ghost", Username: "ghost"})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthFlow_EndToEnd(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "bob_01", "Str0ngP@ss")
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob_01", resolved.Username)

	loggedIn, err := svc.Login(ctx, "bob_01", "Str0ngP@ss")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, "bob_01", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
