package service_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/mocks"
	"github.com/taskhub/taskhub-api/internal/search"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/store"
)

type taskServiceFixture struct {
	svc       service.TaskService
	taskStore *mocks.MemoryTaskStore
	index     *mocks.MemoryIndex
}

func newTaskServiceFixture(t *testing.T) *taskServiceFixture {
	t.Helper()
	taskStore := mocks.NewMemoryTaskStore()
	index := mocks.NewMemoryIndex()
	projector := search.NewProjector(index, slog.Default())
	return &taskServiceFixture{
		svc:       service.NewTaskService(taskStore, projector, index, slog.Default()),
		taskStore: taskStore,
		index:     index,
	}
}

func (f *taskServiceFixture) mustCreate(
	t *testing.T,
	owner uuid.UUID,
	title string,
) *domain.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), owner, service.CreateTaskInput{
		Title: title,
	})
	require.NoError(t, err)
	return task
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates task and indexes it", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		owner := uuid.New()

		due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		task, err := f.svc.CreateTask(context.Background(), owner, service.CreateTaskInput{
			Title:       "Plan trip",
			Description: strPtr("book flights"),
			DueDate:     &due,
			Priority:    strPtr("high"),
		})
		require.NoError(t, err)

		assert.Equal(t, owner, task.OwnerID)
		assert.Equal(t, domain.PriorityHigh, task.Priority)

		doc, ok := f.index.Get(task.ID.String())
		require.True(t, ok)
		assert.Equal(t, "Plan trip", doc.Title)
		require.NotNil(t, doc.DueDate)
		assert.Equal(t, due.Unix(), *doc.DueDate)
	})

	t.Run("empty title fails without indexing", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)

		_, err := f.svc.CreateTask(context.Background(), uuid.New(), service.CreateTaskInput{})
		assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
		assert.Equal(t, 0, f.index.Len())
	})

	t.Run("invalid priority fails without persisting", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)

		_, err := f.svc.CreateTask(context.Background(), uuid.New(), service.CreateTaskInput{
			Title:    "Bad priority",
			Priority: strPtr("urgent"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)
		assert.Equal(t, 0, f.index.Len())
	})

	t.Run("index failure does not fail the mutation", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		f.index.UpsertErr = errors.New("index down")

		task, err := f.svc.CreateTask(context.Background(), uuid.New(), service.CreateTaskInput{
			Title: "Survives",
		})
		require.NoError(t, err)

		// The task was saved even though indexing failed.
		stored, err := f.taskStore.GetByID(context.Background(), task.ID, false)
		require.NoError(t, err)
		assert.Equal(t, "Survives", stored.Title)
	})
}

func TestTaskServiceOwnershipGuard(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	owner := uuid.New()
	intruder := uuid.New()
	task := f.mustCreate(t, owner, "Private task")

	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		_, err := f.svc.GetTask(ctx, intruder, task.ID)
		assert.ErrorIs(t, err, service.ErrTaskNotOwned)
	})

	t.Run("update", func(t *testing.T) {
		_, err := f.svc.UpdateTask(ctx, intruder, task.ID, service.UpdateTaskInput{
			Title: strPtr("Hijacked"),
		})
		assert.ErrorIs(t, err, service.ErrTaskNotOwned)
	})

	t.Run("delete", func(t *testing.T) {
		err := f.svc.DeleteTask(ctx, intruder, task.ID)
		assert.ErrorIs(t, err, service.ErrTaskNotOwned)
	})

	t.Run("restore", func(t *testing.T) {
		_, err := f.svc.RestoreTask(ctx, intruder, task.ID)
		assert.ErrorIs(t, err, service.ErrTaskNotOwned)
	})

	t.Run("trashed tasks still read as foreign, not missing", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteTask(ctx, owner, task.ID))
		_, err := f.svc.GetTask(ctx, intruder, task.ID)
		assert.ErrorIs(t, err, service.ErrTaskNotOwned)
	})

	t.Run("unknown task is not found", func(t *testing.T) {
		_, err := f.svc.GetTask(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceUpdate(t *testing.T) {
	t.Parallel()

	t.Run("own update succeeds and advances UpdatedAt", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		owner := uuid.New()
		task := f.mustCreate(t, owner, "Original")
		before := task.UpdatedAt

		time.Sleep(time.Millisecond)
		updated, err := f.svc.UpdateTask(context.Background(), owner, task.ID,
			service.UpdateTaskInput{
				Title:       strPtr("Renamed"),
				IsCompleted: boolPtr(true),
			})
		require.NoError(t, err)

		assert.Equal(t, "Renamed", updated.Title)
		assert.True(t, updated.IsCompleted)
		assert.True(t, updated.UpdatedAt.After(before))

		doc, ok := f.index.Get(task.ID.String())
		require.True(t, ok)
		assert.Equal(t, "Renamed", doc.Title)
		assert.True(t, doc.IsCompleted)
	})

	t.Run("absent fields stay unchanged", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		owner := uuid.New()
		created, err := f.svc.CreateTask(context.Background(), owner, service.CreateTaskInput{
			Title:       "Keep me",
			Description: strPtr("original description"),
		})
		require.NoError(t, err)

		updated, err := f.svc.UpdateTask(context.Background(), owner, created.ID,
			service.UpdateTaskInput{IsCompleted: boolPtr(true)})
		require.NoError(t, err)

		assert.Equal(t, "Keep me", updated.Title)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "original description", *updated.Description)
	})

	t.Run("empty title is rejected", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		owner := uuid.New()
		task := f.mustCreate(t, owner, "Valid")

		_, err := f.svc.UpdateTask(context.Background(), owner, task.ID,
			service.UpdateTaskInput{Title: strPtr("")})
		assert.ErrorIs(t, err, domain.ErrTaskTitleEmpty)
	})

	t.Run("trashed task cannot be updated", func(t *testing.T) {
		t.Parallel()
		f := newTaskServiceFixture(t)
		owner := uuid.New()
		task := f.mustCreate(t, owner, "Trash then edit")
		require.NoError(t, f.svc.DeleteTask(context.Background(), owner, task.ID))

		_, err := f.svc.UpdateTask(context.Background(), owner, task.ID,
			service.UpdateTaskInput{Title: strPtr("Too late")})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceDeleteAndRestore(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	owner := uuid.New()
	task := f.mustCreate(t, owner, "Cycle me")
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteTask(ctx, owner, task.ID))

	t.Run("deleted task leaves the index", func(t *testing.T) {
		_, ok := f.index.Get(task.ID.String())
		assert.False(t, ok)
	})

	t.Run("deleted task is hidden from get", func(t *testing.T) {
		_, err := f.svc.GetTask(ctx, owner, task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		assert.NoError(t, f.svc.DeleteTask(ctx, owner, task.ID))
	})

	t.Run("restore brings the task and its document back", func(t *testing.T) {
		restored, err := f.svc.RestoreTask(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.False(t, restored.IsDeleted())

		doc, ok := f.index.Get(task.ID.String())
		require.True(t, ok)
		assert.Equal(t, "Cycle me", doc.Title)

		got, err := f.svc.GetTask(ctx, owner, task.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
	})

	t.Run("restoring a live task is a no-op", func(t *testing.T) {
		_, err := f.svc.RestoreTask(ctx, owner, task.ID)
		assert.NoError(t, err)
	})
}

func TestTaskServiceList(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	owner := uuid.New()
	other := uuid.New()
	ctx := context.Background()

	first := f.mustCreate(t, owner, "First")
	second := f.mustCreate(t, owner, "Second")
	f.mustCreate(t, other, "Foreign")

	t.Run("returns only the principal's tasks in creation order", func(t *testing.T) {
		tasks, err := f.svc.ListTasks(ctx, owner, store.NewTaskQuery())
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, first.ID, tasks[0].ID)
		assert.Equal(t, second.ID, tasks[1].ID)
	})

	t.Run("foreign owner scope on the query is overridden", func(t *testing.T) {
		tasks, err := f.svc.ListTasks(ctx, owner, store.NewTaskQuery().ForUser(other))
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		for _, task := range tasks {
			assert.Equal(t, owner, task.OwnerID)
		}
	})

	t.Run("filters compose", func(t *testing.T) {
		_, err := f.svc.UpdateTask(ctx, owner, first.ID,
			service.UpdateTaskInput{IsCompleted: boolPtr(true)})
		require.NoError(t, err)

		completed, err := f.svc.ListTasks(ctx, owner, store.NewTaskQuery().Completed())
		require.NoError(t, err)
		require.Len(t, completed, 1)
		assert.Equal(t, first.ID, completed[0].ID)
	})

	t.Run("poisoned query surfaces its error", func(t *testing.T) {
		_, err := f.svc.ListTasks(ctx, owner,
			store.NewTaskQuery().WithPriority(domain.Priority("urgent")))
		assert.ErrorIs(t, err, store.ErrInvalidQuery)
	})

	t.Run("trashed tasks appear only when requested", func(t *testing.T) {
		require.NoError(t, f.svc.DeleteTask(ctx, owner, second.ID))

		live, err := f.svc.ListTasks(ctx, owner, store.NewTaskQuery())
		require.NoError(t, err)
		require.Len(t, live, 1)

		all, err := f.svc.ListTasks(ctx, owner, store.NewTaskQuery().IncludeTrashed())
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestTaskServiceSearch(t *testing.T) {
	t.Parallel()

	f := newTaskServiceFixture(t)
	owner := uuid.New()
	other := uuid.New()
	ctx := context.Background()

	f.mustCreate(t, owner, "Buy groceries")
	f.mustCreate(t, owner, "Write report")
	f.mustCreate(t, other, "Buy a boat")

	docs, err := f.svc.SearchTasks(ctx, owner, "buy")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Buy groceries", docs[0].Title)

	t.Run("search error surfaces", func(t *testing.T) {
		f.index.SearchErr = errors.New("index down")
		_, err := f.svc.SearchTasks(ctx, owner, "buy")
		assert.Error(t, err)
	})
}
