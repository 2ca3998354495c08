package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"task-tracker/internal/logging"
	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
)

// ユーザー名とパスワードの長さ制限
const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxPasswordLen = 72 // bcryptの上限(バイト)
)

// AuthService はユーザー登録・認証・パスワード変更を扱います。
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   *PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService は新しいAuthServiceを作成します。
func NewAuthService(userRepo repositories.UserRepository, hasher *PasswordHasher) *AuthService {
	return &AuthService{userRepo: userRepo, hasher: hasher}
}

// Register はユーザーを登録します。保存するのはハッシュのみです。
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, NewValidationError("Username and password are required")
	}
	if n := len([]rune(username)); n < minUsernameLen || n > maxUsernameLen {
		return nil, NewValidationError(fmt.Sprintf("Username must be %d to %d characters", minUsernameLen, maxUsernameLen))
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	createdUser, err := s.userRepo.Create(ctx, &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	logging.Logger.WithField("user_id", createdUser.ID).Info("User registered")
	return createdUser, nil
}

// Authenticate はユーザー名とパスワードを照合します。
// 失敗時は ErrUserNotFound か ErrInvalidCredentials を返し、どちらも ErrAuthFailed を包みます。
func (s *AuthService) Authenticate(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	foundUser, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// 応答時間からユーザーの有無を推測されないよう、同じコストで照合しておく
			_ = s.hasher.VerifyPassword(s.dummy(), req.Password)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.hasher.VerifyPassword(foundUser.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return foundUser, nil
}

// ResetPassword はセッションのユーザーのパスワードを上書きします。
// 確認用と一致しない場合は何も変更しません。
func (s *AuthService) ResetPassword(ctx context.Context, session *models.Session, req models.ResetPasswordRequest) error {
	if session == nil {
		return ErrAuthFailed
	}
	if req.NewPassword == "" {
		return NewValidationError("New password is required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := s.hasher.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, session.UserID, hashedPassword); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrAuthFailed
		}
		return err
	}
	logging.Logger.WithField("user_id", session.UserID).Info("Password reset")
	return nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.HashPassword("task-tracker-dummy-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return NewValidationError(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	if len(password) > maxPasswordLen {
		return NewValidationError(fmt.Sprintf("Password must be at most %d bytes", maxPasswordLen))
	}
	return nil
}
