package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/models"
)

// Manager はログインセッションの開始・解決・終了を行います。
type Manager struct {
	store  Store
	signer *TokenSigner
	ttl    time.Duration
	now    func() time.Time
}

// NewManager は新しいManagerを作成します。
func NewManager(store Store, signer *TokenSigner, ttl time.Duration) *Manager {
	return &Manager{store: store, signer: signer, ttl: ttl, now: time.Now}
}

// TTL はセッションの有効期間を返します。
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Start はユーザーのセッションを作成し、クッキーに載せるトークンを返します。
func (m *Manager) Start(ctx context.Context, user *models.User) (*models.Session, string, error) {
	now := m.now().UTC()
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, "", err
	}
	token, err := m.signer.GenerateToken(s.ID, s.ExpiresAt)
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return nil, "", err
	}
	return s, token, nil
}

// Resolve はトークンからセッションを引きます。
// 不正・期限切れのトークンやストアに無いセッションは ErrSessionNotFound になります。
func (m *Manager) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	sid, err := m.signer.ValidateToken(token)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	s, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, sid)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// End はセッションを破棄します。何度呼んでもエラーになりません。
func (m *Manager) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	sid, err := m.signer.ValidateToken(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, sid); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return nil
}
