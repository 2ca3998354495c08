package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/logging"
	"task-tracker/internal/models"
)

const taskColumns = "id, user_id, title, description, due_date, priority, completed, created_at, updated_at"

// MySQLTaskRepository は tasks テーブルを操作します。
type MySQLTaskRepository struct {
	DB *sql.DB
}

// NewMySQLTaskRepository は新しいMySQLTaskRepositoryインスタンスを作成します。
func NewMySQLTaskRepository(db *sql.DB) *MySQLTaskRepository {
	return &MySQLTaskRepository{DB: db}
}

// Create は新しいタスクを挿入します。
func (r *MySQLTaskRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	query := "INSERT INTO tasks (" + taskColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.DB.ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, nullDate(t.DueDate), t.Priority, t.Completed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to insert task")
		return nil, fmt.Errorf("could not insert task: %w", err)
	}
	return t, nil
}

// FindByOwner はユーザーのタスクを挿入順に取得します。
func (r *MySQLTaskRepository) FindByOwner(ctx context.Context, userID string) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE user_id = ? ORDER BY seq ASC"

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// FindByIDAndOwner は所有者が一致する場合のみタスクを返します。
func (r *MySQLTaskRepository) FindByIDAndOwner(ctx context.Context, id, userID string) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ? AND user_id = ?"
	t, err := scanTask(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

// Update は指定されたフィールドだけを更新します。
func (r *MySQLTaskRepository) Update(ctx context.Context, id, userID string, c models.TaskChanges) (*models.Task, error) {
	if c.Empty() {
		return r.FindByIDAndOwner(ctx, id, userID)
	}

	sets := []string{}
	args := []interface{}{}
	if c.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *c.Title)
	}
	if c.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *c.Description)
	}
	if c.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	} else if c.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *c.DueDate)
	}
	if c.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *c.Priority)
	}
	if c.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *c.Completed)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id, userID)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ? AND user_id = ?"
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		logging.Logger.WithError(err).Error("Failed to update task")
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	// MySQLは値が変わらない行をRowsAffectedに数えないため、所有者チェック込みで読み直す
	return r.FindByIDAndOwner(ctx, id, userID)
}

// Toggle は完了フラグを一文で反転します。
func (r *MySQLTaskRepository) Toggle(ctx context.Context, id, userID string) (*models.Task, error) {
	query := "UPDATE tasks SET completed = NOT completed, updated_at = ? WHERE id = ? AND user_id = ?"
	result, err := r.DB.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("could not toggle task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.FindByIDAndOwner(ctx, id, userID)
}

// Delete は所有者が一致するタスクを削除します。
func (r *MySQLTaskRepository) Delete(ctx context.Context, id, userID string) error {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to delete task")
		return fmt.Errorf("could not delete task: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var dueDate sql.NullTime
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &dueDate, &t.Priority,
		&t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	return &t, nil
}

func nullDate(d *time.Time) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *d, Valid: true}
}
