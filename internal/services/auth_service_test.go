package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
	"task-tracker/internal/services"
)

func newAuthService() (*services.AuthService, *repositories.MemoryUserRepository) {
	repo := repositories.NewMemoryUserRepository()
	return services.NewAuthService(repo, services.NewPasswordHasher(bcrypt.MinCost)), repo
}

func TestRegister_StoresOnlyHash(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	stored, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "another"})
	assert.ErrorIs(t, err, services.ErrUsernameTaken)
	assert.True(t, services.IsValidation(err))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuthService()
	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing username", models.RegisterRequest{Password: "secret1"}},
		{"missing password", models.RegisterRequest{Username: "alice"}},
		{"blank username", models.RegisterRequest{Username: "   ", Password: "secret1"}},
		{"short username", models.RegisterRequest{Username: "al", Password: "secret1"}},
		{"short password", models.RegisterRequest{Username: "alice", Password: "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			assert.True(t, services.IsValidation(err), "got %v", err)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, models.LoginRequest{Username: "alice", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, registered.ID, u.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, models.LoginRequest{Username: "alice", Password: "wrong!!"})
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
		assert.ErrorIs(t, err, services.ErrAuthFailed)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, models.LoginRequest{Username: "bob", Password: "secret1"})
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.ErrorIs(t, err, services.ErrAuthFailed)
	})
}

func TestResetPassword(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	session := &models.Session{ID: "s1", UserID: u.ID, Username: u.Username}

	t.Run("mismatch leaves password unchanged", func(t *testing.T) {
		err := svc.ResetPassword(ctx, session, models.ResetPasswordRequest{NewPassword: "newpass1", ConfirmPassword: "newpass2"})
		assert.ErrorIs(t, err, services.ErrPasswordMismatch)

		_, err = svc.Authenticate(ctx, models.LoginRequest{Username: "alice", Password: "secret1"})
		assert.NoError(t, err)
	})

	t.Run("empty password", func(t *testing.T) {
		err := svc.ResetPassword(ctx, session, models.ResetPasswordRequest{})
		assert.True(t, services.IsValidation(err))
	})

	t.Run("success replaces hash", func(t *testing.T) {
		err := svc.ResetPassword(ctx, session, models.ResetPasswordRequest{NewPassword: "newpass1", ConfirmPassword: "newpass1"})
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, models.LoginRequest{Username: "alice", Password: "newpass1"})
		assert.NoError(t, err)
		_, err = svc.Authenticate(ctx, models.LoginRequest{Username: "alice", Password: "secret1"})
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("nil session", func(t *testing.T) {
		err := svc.ResetPassword(ctx, nil, models.ResetPasswordRequest{NewPassword: "newpass1", ConfirmPassword: "newpass1"})
		assert.ErrorIs(t, err, services.ErrAuthFailed)
	})
}
