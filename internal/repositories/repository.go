// Package repositories はユーザーとタスクの永続化を提供します。
// MySQL・MongoDB・メモリの三つの実装があり、どれも同じインターフェースを満たします。
package repositories

import (
	"context"
	"errors"

	"task-tracker/internal/models"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrUserNotFound      = errors.New("user not found")
	// ErrTaskNotFound は存在しない、または他人のタスクの場合に返します。両者は区別しません。
	ErrTaskNotFound = errors.New("task not found")
)

// UserRepository はユーザーの保存先です。
type UserRepository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, newHash string) error
}

// TaskRepository はタスクの保存先です。ID を受け取るメソッドはすべて所有者で絞り込みます。
type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	FindByOwner(ctx context.Context, userID string) ([]*models.Task, error)
	FindByIDAndOwner(ctx context.Context, id, userID string) (*models.Task, error)
	Update(ctx context.Context, id, userID string, changes models.TaskChanges) (*models.Task, error)
	Toggle(ctx context.Context, id, userID string) (*models.Task, error)
	Delete(ctx context.Context, id, userID string) error
}

// IsNotFound はドメイン上の「見つからない」エラーかを判定します。
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTaskNotFound)
}
