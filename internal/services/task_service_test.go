package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/models"
	"task-tracker/internal/repositories"
	"task-tracker/internal/services"
)

func newTaskService() *services.TaskService {
	return services.NewTaskService(repositories.NewMemoryTaskRepository())
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreate_Defaults(t *testing.T) {
	svc := newTaskService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", models.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.False(t, tasks[0].Completed)
	assert.Equal(t, models.PriorityMedium, tasks[0].Priority)
	assert.Nil(t, tasks[0].DueDate)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTaskService()
	tests := []struct {
		name string
		req  models.CreateTaskRequest
	}{
		{"empty title", models.CreateTaskRequest{}},
		{"blank title", models.CreateTaskRequest{Title: "   "}},
		{"bad date", models.CreateTaskRequest{Title: "x", DueDate: "12/31/2025"}},
		{"bad priority", models.CreateTaskRequest{Title: "x", Priority: "Urgent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", tt.req)
			assert.True(t, services.IsValidation(err), "got %v", err)
		})
	}
}

func TestCreate_WithDueDateAndPriority(t *testing.T) {
	svc := newTaskService()

	task, err := svc.Create(context.Background(), "u1", models.CreateTaskRequest{
		Title: "Report", Description: "quarterly", DueDate: "2025-12-31", Priority: "high",
	})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2025-12-31", task.DueDate.Format(models.DueDateLayout))
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, "quarterly", task.Description)
}

func TestList_InsertionOrder(t *testing.T) {
	svc := newTaskService()
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, "u1", models.CreateTaskRequest{Title: title})
		require.NoError(t, err)
	}

	tasks, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "third", tasks[2].Title)
}

func TestToggle_TwiceRestores(t *testing.T) {
	svc := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", models.CreateTaskRequest{Title: "flip"})
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = svc.Toggle(ctx, "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Completed, toggled.Completed)
}

func TestUpdate_Partial(t *testing.T) {
	svc := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", models.CreateTaskRequest{Title: "draft", Description: "keep", DueDate: "2025-01-02"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "u1", task.ID, models.UpdateTaskRequest{
		Title:    strPtr("final"),
		Priority: strPtr("Low"),
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "keep", updated.Description)
	assert.Equal(t, models.PriorityLow, updated.Priority)
	require.NotNil(t, updated.DueDate)

	updated, err = svc.Update(ctx, "u1", task.ID, models.UpdateTaskRequest{
		DueDate:   strPtr(""),
		Completed: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.True(t, updated.Completed)
	assert.Equal(t, "final", updated.Title)

	_, err = svc.Update(ctx, "u1", task.ID, models.UpdateTaskRequest{Title: strPtr(" ")})
	assert.True(t, services.IsValidation(err))
}

func TestDelete_Idempotent(t *testing.T) {
	svc := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, "u1", models.CreateTaskRequest{Title: "gone"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", task.ID))
	require.NoError(t, svc.Delete(ctx, "u1", task.ID))

	tasks, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestOwnershipIsolation(t *testing.T) {
	svc := newTaskService()
	ctx := context.Background()

	owned, err := svc.Create(ctx, "u1", models.CreateTaskRequest{Title: "private"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = svc.Get(ctx, "u2", owned.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)

	_, err = svc.Toggle(ctx, "u2", owned.ID)
	assert.ErrorIs(t, err, services.ErrTaskNotFound)

	_, err = svc.Update(ctx, "u2", owned.ID, models.UpdateTaskRequest{Title: strPtr("hijacked")})
	assert.ErrorIs(t, err, services.ErrTaskNotFound)

	assert.NoError(t, svc.Delete(ctx, "u2", owned.ID))

	still, err := svc.Get(ctx, "u1", owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", still.Title)
	assert.False(t, still.Completed)
}
