// Package models はユーザー・タスク・セッションの構造体を定義します。
package models

import (
	"time"
)

// 優先度
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// DueDateLayout はフォームで受け付ける期限日の書式です。
const DueDateLayout = "2006-01-02"

// Task は一人のユーザーが所有するタスクです。
type Task struct {
	ID          string     `json:"id" bson:"_id"`
	UserID      string     `json:"user_id" bson:"user_id"` // 所有者 (必須)
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	Priority    string     `json:"priority" bson:"priority"`
	Completed   bool       `json:"completed" bson:"completed"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// CreateTaskRequest は /add フォームの入力です。
type CreateTaskRequest struct {
	Title       string `form:"title" binding:"max=200"`
	Description string `form:"description" binding:"max=2000"`
	DueDate     string `form:"dueDate"`
	Priority    string `form:"priority"`
}

// UpdateTaskRequest は /edit/:id フォームの入力です。nil のフィールドは更新しません。
type UpdateTaskRequest struct {
	Title       *string `form:"title" binding:"omitempty,max=200"`
	Description *string `form:"description" binding:"omitempty,max=2000"`
	DueDate     *string `form:"dueDate"`
	Priority    *string `form:"priority"`
	Completed   *bool   `form:"completed"`
}

// TaskChanges はリポジトリに渡す検証済みの部分更新です。
type TaskChanges struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *string
	Completed    *bool
}

// Empty は変更が一つもないかを返します。
func (c TaskChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.DueDate == nil && !c.ClearDueDate &&
		c.Priority == nil && c.Completed == nil
}
