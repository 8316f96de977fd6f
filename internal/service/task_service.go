package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/search"
	"github.com/taskhub/taskhub-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
// Title is required; everything else falls back to the task defaults.
type CreateTaskInput struct {
	Title       string
	Description *string
	IsCompleted *bool
	DueDate     *time.Time
	Priority    *string
}

// UpdateTaskInput carries a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
	DueDate     *time.Time
	Priority    *string
}

// TaskService provides task operations scoped to the authenticated user.
// Every operation that touches an existing task verifies the caller owns it
// before acting; a mismatch yields ErrTaskNotOwned regardless of whether the
// task is live or trashed, so ownership is never leaked through 404s.
type TaskService interface {
	// CreateTask creates a task owned by ownerID and indexes it for search.
	CreateTask(ctx context.Context, ownerID uuid.UUID, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a live task the principal owns.
	GetTask(ctx context.Context, principal, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to a live task the principal owns
	// and refreshes its search document.
	UpdateTask(
		ctx context.Context,
		principal, taskID uuid.UUID,
		input UpdateTaskInput,
	) (*domain.Task, error)

	// DeleteTask soft-deletes a task the principal owns and removes it from
	// the search index. Deleting an already-trashed task is a no-op.
	DeleteTask(ctx context.Context, principal, taskID uuid.UUID) error

	// RestoreTask brings a trashed task the principal owns back to live and
	// re-indexes it. Restoring a live task is a no-op.
	RestoreTask(ctx context.Context, principal, taskID uuid.UUID) (*domain.Task, error)

	// ListTasks executes the query scoped to the principal. Any owner scope
	// already on the query is replaced, never widened.
	ListTasks(ctx context.Context, principal uuid.UUID, q store.TaskQuery) ([]*domain.Task, error)

	// SearchTasks performs a text search over the principal's indexed tasks.
	SearchTasks(ctx context.Context, principal uuid.UUID, query string) ([]search.Document, error)
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	projector *search.Projector
	index     search.Index
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	projector *search.Projector,
	index search.Index,
	logger *slog.Logger,
) TaskService {
	return &TaskServiceImpl{
		taskStore: taskStore,
		projector: projector,
		index:     index,
		logger:    logger.With("component", "task_service"),
	}
}

// CreateTask creates a task owned by ownerID and indexes it for search.
func (s *TaskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	task, err := domain.NewTask(ownerID, input.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if input.Description != nil {
		task.UpdateDescription(input.Description)
	}
	if input.IsCompleted != nil {
		task.SetCompleted(*input.IsCompleted)
	}
	if input.DueDate != nil {
		task.UpdateDueDate(input.DueDate)
	}
	if input.Priority != nil {
		p, err := domain.ParsePriority(*input.Priority)
		if err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		if err := task.UpdatePriority(p); err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		s.logger.Error("failed to save task",
			"error", err,
			"owner_id", ownerID)
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	s.projector.TaskSaved(ctx, search.Project(task))

	s.logger.Debug("task created",
		"task_id", task.ID,
		"owner_id", ownerID)

	return task, nil
}

// GetTask retrieves a live task owned by the principal.
func (s *TaskServiceImpl) GetTask(
	ctx context.Context,
	principal, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.loadOwned(ctx, principal, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted() {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// UpdateTask applies a partial update to a live task owned by the principal.
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	principal, taskID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	task, err := s.loadOwned(ctx, principal, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsDeleted() {
		return nil, store.ErrTaskNotFound
	}

	if input.Title != nil {
		if err := task.UpdateTitle(*input.Title); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	}
	if input.Description != nil {
		task.UpdateDescription(input.Description)
	}
	if input.IsCompleted != nil {
		task.SetCompleted(*input.IsCompleted)
	}
	if input.DueDate != nil {
		task.UpdateDueDate(input.DueDate)
	}
	if input.Priority != nil {
		p, err := domain.ParsePriority(*input.Priority)
		if err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
		if err := task.UpdatePriority(p); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.projector.TaskSaved(ctx, search.Project(task))

	return task, nil
}

// DeleteTask soft-deletes a task owned by the principal and removes its
// search document.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, principal, taskID uuid.UUID) error {
	task, err := s.loadOwned(ctx, principal, taskID)
	if err != nil {
		return err
	}

	if err := s.taskStore.SoftDelete(ctx, taskID); err != nil {
		s.logger.Error("failed to delete task",
			"error", err,
			"task_id", taskID)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.projector.TaskDeleted(ctx, task.OwnerID.String(), taskID.String())

	s.logger.Debug("task deleted",
		"task_id", taskID,
		"owner_id", principal)

	return nil
}

// RestoreTask brings a trashed task owned by the principal back to live.
func (s *TaskServiceImpl) RestoreTask(
	ctx context.Context,
	principal, taskID uuid.UUID,
) (*domain.Task, error) {
	if _, err := s.loadOwned(ctx, principal, taskID); err != nil {
		return nil, err
	}

	if err := s.taskStore.Restore(ctx, taskID); err != nil {
		s.logger.Error("failed to restore task",
			"error", err,
			"task_id", taskID)
		return nil, fmt.Errorf("failed to restore task: %w", err)
	}

	// Re-read so the response and the search document carry the timestamps
	// the store actually wrote.
	task, err := s.taskStore.GetByID(ctx, taskID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to reload restored task: %w", err)
	}

	s.projector.TaskSaved(ctx, search.Project(task))

	return task, nil
}

// ListTasks executes the query scoped to the principal.
func (s *TaskServiceImpl) ListTasks(
	ctx context.Context,
	principal uuid.UUID,
	q store.TaskQuery,
) ([]*domain.Task, error) {
	scoped := q.ForUser(principal)
	if err := scoped.Err(); err != nil {
		return nil, err
	}

	tasks, err := s.taskStore.List(ctx, scoped)
	if err != nil {
		s.logger.Error("failed to list tasks",
			"error", err,
			"owner_id", principal)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// SearchTasks performs a text search over the principal's indexed tasks.
func (s *TaskServiceImpl) SearchTasks(
	ctx context.Context,
	principal uuid.UUID,
	query string,
) ([]search.Document, error) {
	docs, err := s.index.Search(ctx, principal.String(), query)
	if err != nil {
		s.logger.Error("failed to search tasks",
			"error", err,
			"owner_id", principal)
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return docs, nil
}

// loadOwned fetches the task regardless of trash state and verifies the
// principal owns it. Ownership failures take precedence over visibility so a
// foreign task never reads as missing.
func (s *TaskServiceImpl) loadOwned(
	ctx context.Context,
	principal, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID, true)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if task.OwnerID != principal {
		s.logger.Warn("ownership check failed",
			"task_id", taskID,
			"owner_id", task.OwnerID,
			"principal", principal)
		return nil, ErrTaskNotOwned
	}

	return task, nil
}
