package services

import (
	"context"
	"testing"

	"uslugo/config"
	uslugo_errors "uslugo/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *memStore) {
	store := newMemStore()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 60}
	return NewAuthService(&memUserRepo{store: store}, cfg), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterInput{
		FullName: "Alice Ivanova",
		Email:    "  Alice@Example.COM ",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "alice@example.com", res.User.Email)

	claims, err := svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, uslugo_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{FullName: "", Email: "a@b.com", Password: "long enough"})
	assert.ErrorIs(t, err, uslugo_errors.ErrInvalidInput)

	_, err = svc.Register(ctx, RegisterInput{FullName: "A", Email: "a@b.com", Password: "long enough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{FullName: "B", Email: "A@B.com", Password: "long enough"})
	assert.ErrorIs(t, err, uslugo_errors.ErrAlreadyExists, "email comparison is case insensitive")
}

func TestLoginFailures(t *testing.T) {
	svc, store := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, uslugo_errors.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, uslugo_errors.ErrUnauthorized)

	// Deactivated accounts are rejected distinctly.
	for id, u := range store.users {
		u.IsActive = false
		store.users[id] = u
	}
	_, err = svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, uslugo_errors.ErrForbidden)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, uslugo_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, uslugo_errors.ErrUnauthorized)

	// A token signed with a different secret fails verification.
	other := NewAuthService(nil, &config.Config{JWTSecret: "other-secret", JWTExpiryMin: 60})
	token, _, err := other.newAccessToken(uuid.New())
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, uslugo_errors.ErrUnauthorized)
}
