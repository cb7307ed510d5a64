package services

import (
	"context"
	"testing"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Token expiry is checked by the jwt parser against wall-clock time, so
// fixtures issue tokens anchored at the real current time.
func newAuthFixture(t *testing.T) AuthService {
	t.Helper()
	clock := NewFakeClock(time.Now())
	return NewAuthService(memory.NewMemoryUserRepository(), "test-secret", time.Hour, clock)
}

func TestRegisterAndLogin(t *testing.T) {
	service := newAuthFixture(t)
	ctx := context.Background()

	user, err := service.Register(ctx, "alice", "s3cret-pass", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, domain.Address("alice"), user.Address)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, err := service.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.Address("alice"), claims.Address)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	service := newAuthFixture(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "pass-one", "alice")
	require.NoError(t, err)

	_, err = service.Register(ctx, "alice", "pass-two", "alice2")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	service := newAuthFixture(t)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "correct-pass", "alice")
	require.NoError(t, err)

	_, err = service.Login(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestLoginUnknownUser(t *testing.T) {
	service := newAuthFixture(t)

	_, err := service.Login(context.Background(), "nobody", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredential)
}

func TestValidateTokenExpired(t *testing.T) {
	// Issued two hours in the past with a one hour TTL, expired on arrival.
	clock := NewFakeClock(time.Now().Add(-2 * time.Hour))
	service := NewAuthService(memory.NewMemoryUserRepository(), "test-secret", time.Hour, clock)
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "s3cret-pass", "alice")
	require.NoError(t, err)
	token, err := service.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	service := newAuthFixture(t)

	_, err := service.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	clock := NewFakeClock(time.Now())
	issuer := NewAuthService(users, "secret-a", time.Hour, clock)
	verifier := NewAuthService(users, "secret-b", time.Hour, clock)
	ctx := context.Background()

	_, err := issuer.Register(ctx, "alice", "s3cret-pass", "alice")
	require.NoError(t, err)
	token, err := issuer.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
