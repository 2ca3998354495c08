// Package sessions はサーバー側セッションの保存と、クッキーに載せる署名付きトークンを扱います。
package sessions

import (
	"context"
	"errors"
	"time"

	"task-tracker/internal/models"
)

// ErrSessionNotFound はセッションが無い、期限切れ、またはトークンが不正な場合に返します。
var ErrSessionNotFound = errors.New("session not found")

// Store はセッションの保存先です。
type Store interface {
	Save(ctx context.Context, s *models.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete は存在しないIDに対してもエラーを返しません。
	Delete(ctx context.Context, id string) error
}
