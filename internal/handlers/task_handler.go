package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/models"
	"task-tracker/internal/services"
)

// TaskHandler はタスク関連のハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List はログイン中のユーザーのタスク一覧を表示します。
func (h *TaskHandler) List(c *gin.Context) {
	h.renderList(c, http.StatusOK, "", models.CreateTaskRequest{})
}

// Add は新しいタスクを作成します。
func (h *TaskHandler) Add(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.CreateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderList(c, http.StatusBadRequest, "Invalid form input", req)
		return
	}

	if _, err := h.taskService.Create(c.Request.Context(), session.UserID, req); err != nil {
		var ve *services.ValidationError
		if errors.As(err, &ve) {
			h.renderList(c, http.StatusBadRequest, ve.Message, req)
			return
		}
		RenderServerError(c, err)
		return
	}
	redirect(c, "/tasks")
}

// Toggle は完了状態を反転します。他人のタスクなら何もせず一覧へ戻します。
func (h *TaskHandler) Toggle(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	_, err := h.taskService.Toggle(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil && !errors.Is(err, services.ErrTaskNotFound) {
		RenderServerError(c, err)
		return
	}
	redirect(c, "/tasks")
}

// ShowEdit は編集フォームを表示します。
func (h *TaskHandler) ShowEdit(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), session.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			redirect(c, "/tasks")
			return
		}
		RenderServerError(c, err)
		return
	}
	render(c, http.StatusOK, "edit.html", gin.H{"Title": "Edit task", "Task": task})
}

// Edit はタスクを部分更新します。
func (h *TaskHandler) Edit(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	taskID := c.Param("id")

	var req models.UpdateTaskRequest
	bindErr := c.ShouldBind(&req)

	var err error
	if bindErr == nil {
		_, err = h.taskService.Update(ctx, session.UserID, taskID, req)
	}

	switch {
	case bindErr == nil && err == nil:
		redirect(c, "/tasks")
	case errors.Is(err, services.ErrTaskNotFound):
		redirect(c, "/tasks")
	case bindErr != nil || services.IsValidation(err):
		msg := "Invalid form input"
		if err != nil {
			msg = err.Error()
		}
		task, getErr := h.taskService.Get(ctx, session.UserID, taskID)
		if getErr != nil {
			if errors.Is(getErr, services.ErrTaskNotFound) {
				redirect(c, "/tasks")
				return
			}
			RenderServerError(c, getErr)
			return
		}
		render(c, http.StatusBadRequest, "edit.html", gin.H{"Title": "Edit task", "Task": task, "Error": msg})
	default:
		RenderServerError(c, err)
	}
}

// Delete はタスクを削除します。既に無い場合も一覧へ戻すだけです。
func (h *TaskHandler) Delete(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), session.UserID, c.Param("id")); err != nil {
		RenderServerError(c, err)
		return
	}
	redirect(c, "/tasks")
}

func (h *TaskHandler) renderList(c *gin.Context, status int, errMsg string, form models.CreateTaskRequest) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), session.UserID)
	if err != nil {
		RenderServerError(c, err)
		return
	}
	render(c, status, "tasks.html", gin.H{
		"Title": "Tasks",
		"Tasks": tasks,
		"Error": errMsg,
		"Form":  form,
	})
}
