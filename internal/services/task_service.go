package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
)

// TaskService はタスク関連のビジネスロジックを扱います。
// すべての操作は呼び出し元のユーザーIDで絞り込まれ、他人のタスクは存在しないものとして扱います。
type TaskService struct {
	taskRepo repositories.TaskRepository
}

// NewTaskService は新しいTaskServiceを作成します。
func NewTaskService(taskRepo repositories.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// List はユーザーのタスクを挿入順に返します。
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.taskRepo.FindByOwner(ctx, userID)
}

// Get は指定IDのタスクを返します。
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	t, err := s.taskRepo.FindByIDAndOwner(ctx, taskID, userID)
	return t, mapTaskErr(err)
}

// Create は新しいタスクを作成します。completed は false、priority の既定は Medium です。
func (s *TaskService) Create(ctx context.Context, userID string, req models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, NewValidationError("Title is required")
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}
	priority, err := normalizePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	return s.taskRepo.Create(ctx, &models.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		DueDate:     dueDate,
		Priority:    priority,
		Completed:   false,
	})
}

// Toggle は完了状態を反転します。
func (s *TaskService) Toggle(ctx context.Context, userID, taskID string) (*models.Task, error) {
	t, err := s.taskRepo.Toggle(ctx, taskID, userID)
	return t, mapTaskErr(err)
}

// Update は指定されたフィールドだけを更新します。
func (s *TaskService) Update(ctx context.Context, userID, taskID string, req models.UpdateTaskRequest) (*models.Task, error) {
	changes := models.TaskChanges{Completed: req.Completed}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, NewValidationError("Title is required")
		}
		changes.Title = &title
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		changes.Description = &desc
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			return nil, err
		}
		if dueDate == nil {
			changes.ClearDueDate = true
		} else {
			changes.DueDate = dueDate
		}
	}
	if req.Priority != nil {
		priority, err := normalizePriority(*req.Priority)
		if err != nil {
			return nil, err
		}
		changes.Priority = &priority
	}

	t, err := s.taskRepo.Update(ctx, taskID, userID, changes)
	return t, mapTaskErr(err)
}

// Delete はタスクを削除します。既に無い、または他人のタスクでもエラーにしません。
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	err := s.taskRepo.Delete(ctx, taskID, userID)
	if errors.Is(err, repositories.ErrTaskNotFound) {
		return nil
	}
	return err
}

func mapTaskErr(err error) error {
	if errors.Is(err, repositories.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// parseDueDate は空文字なら nil を返します。
func parseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(models.DueDateLayout, raw)
	if err != nil {
		return nil, NewValidationError("Due date must be in YYYY-MM-DD format")
	}
	return &d, nil
}

func normalizePriority(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return models.PriorityMedium, nil
	case "low":
		return models.PriorityLow, nil
	case "medium":
		return models.PriorityMedium, nil
	case "high":
		return models.PriorityHigh, nil
	}
	return "", NewValidationError("Priority must be Low, Medium or High")
}
