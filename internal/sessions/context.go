package sessions

import (
	"context"

	"task-tracker/internal/models"
)

type contextKey struct{}

// WithSession はリクエストのコンテキストにセッションを載せます。
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext はコンテキストのセッションを返します。未ログインなら nil です。
func FromContext(ctx context.Context) *models.Session {
	s, _ := ctx.Value(contextKey{}).(*models.Session)
	return s
}
