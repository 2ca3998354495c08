package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/models"
)

// MemoryUserRepository はプロセス内にユーザーを保持します。STORE_DRIVER=memory とテストで使います。
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	byName map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   make(map[string]*models.User),
		byName: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[u.Username]; ok {
		return nil, ErrDuplicateUsername
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	stored := *u
	r.byID[u.ID] = &stored
	r.byName[u.Username] = u.ID
	return u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := *stored
	return &u, nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	stored.PasswordHash = newHash
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// MemoryTaskRepository はプロセス内にタスクを挿入順で保持します。
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
	order []string
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: make(map[string]*models.Task)}
}

func (r *MemoryTaskRepository) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.tasks[t.ID] = copyTask(t)
	r.order = append(r.order, t.ID)
	return t, nil
}

func (r *MemoryTaskRepository) FindByOwner(_ context.Context, userID string) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := []*models.Task{}
	for _, id := range r.order {
		if t := r.tasks[id]; t.UserID == userID {
			tasks = append(tasks, copyTask(t))
		}
	}
	return tasks, nil
}

func (r *MemoryTaskRepository) FindByIDAndOwner(_ context.Context, id, userID string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, err := r.owned(id, userID)
	if err != nil {
		return nil, err
	}
	return copyTask(t), nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id, userID string, c models.TaskChanges) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.owned(id, userID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return copyTask(t), nil
	}
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.ClearDueDate {
		t.DueDate = nil
	} else if c.DueDate != nil {
		d := *c.DueDate
		t.DueDate = &d
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Completed != nil {
		t.Completed = *c.Completed
	}
	t.UpdatedAt = time.Now().UTC()
	return copyTask(t), nil
}

func (r *MemoryTaskRepository) Toggle(_ context.Context, id, userID string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.owned(id, userID)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
	return copyTask(t), nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.owned(id, userID); err != nil {
		return err
	}
	delete(r.tasks, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// owned はロック保持中に呼び出します。
func (r *MemoryTaskRepository) owned(id, userID string) (*models.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return t, nil
}

func copyTask(t *models.Task) *models.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
