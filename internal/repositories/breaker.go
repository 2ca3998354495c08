package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"task-tracker/internal/logging"
	"task-tracker/internal/models"
)

// NewStoreBreaker はストア呼び出し用のサーキットブレーカーを作成します。
// ドメインエラー(重複・未検出)とキャンセルは失敗として数えません。再試行はしません。
func NewStoreBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		IsSuccessful: func(err error) bool {
			// 呼び出し側の切断はストアの健全性と無関係なので数えない。タイムアウトは障害として数える。
			return err == nil || IsNotFound(err) || errors.Is(err, ErrDuplicateUsername) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// BreakerUserRepository は UserRepository の呼び出しをブレーカー越しに行います。
type BreakerUserRepository struct {
	next UserRepository
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerUserRepository(next UserRepository, cb *gobreaker.CircuitBreaker) *BreakerUserRepository {
	return &BreakerUserRepository{next: next, cb: cb}
}

func (r *BreakerUserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return execUser(r.cb, func() (*models.User, error) { return r.next.Create(ctx, u) })
}

func (r *BreakerUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return execUser(r.cb, func() (*models.User, error) { return r.next.FindByUsername(ctx, username) })
}

func (r *BreakerUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return execUser(r.cb, func() (*models.User, error) { return r.next.FindByID(ctx, id) })
}

func (r *BreakerUserRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.next.UpdatePassword(ctx, userID, newHash)
	})
	return err
}

// BreakerTaskRepository は TaskRepository の呼び出しをブレーカー越しに行います。
type BreakerTaskRepository struct {
	next TaskRepository
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerTaskRepository(next TaskRepository, cb *gobreaker.CircuitBreaker) *BreakerTaskRepository {
	return &BreakerTaskRepository{next: next, cb: cb}
}

func (r *BreakerTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	return execTask(r.cb, func() (*models.Task, error) { return r.next.Create(ctx, t) })
}

func (r *BreakerTaskRepository) FindByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	res, err := r.cb.Execute(func() (interface{}, error) {
		return r.next.FindByOwner(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return res.([]*models.Task), nil
}

func (r *BreakerTaskRepository) FindByIDAndOwner(ctx context.Context, id, userID string) (*models.Task, error) {
	return execTask(r.cb, func() (*models.Task, error) { return r.next.FindByIDAndOwner(ctx, id, userID) })
}

func (r *BreakerTaskRepository) Update(ctx context.Context, id, userID string, c models.TaskChanges) (*models.Task, error) {
	return execTask(r.cb, func() (*models.Task, error) { return r.next.Update(ctx, id, userID, c) })
}

func (r *BreakerTaskRepository) Toggle(ctx context.Context, id, userID string) (*models.Task, error) {
	return execTask(r.cb, func() (*models.Task, error) { return r.next.Toggle(ctx, id, userID) })
}

func (r *BreakerTaskRepository) Delete(ctx context.Context, id, userID string) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.next.Delete(ctx, id, userID)
	})
	return err
}

func execUser(cb *gobreaker.CircuitBreaker, fn func() (*models.User, error)) (*models.User, error) {
	res, err := cb.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		return nil, err
	}
	return res.(*models.User), nil
}

func execTask(cb *gobreaker.CircuitBreaker, fn func() (*models.Task, error)) (*models.Task, error) {
	res, err := cb.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		return nil, err
	}
	return res.(*models.Task), nil
}
