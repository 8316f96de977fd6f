package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID. When includeTrashed is
	// false, a soft-deleted task is treated as absent.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID, includeTrashed bool) (*domain.Task, error)

	// Update saves changes to an existing live task. The id, owner and
	// creation timestamp columns are never written.
	// Returns ErrTaskNotFound if no live task with that ID exists.
	// Returns validation errors if the task data is invalid.
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete marks the task as deleted. Deleting an already-deleted
	// task is a no-op, not an error.
	// Returns ErrTaskNotFound if the ID never existed.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Restore clears the soft-delete marker. Restoring a live task is a
	// no-op, not an error.
	// Returns ErrTaskNotFound if the ID never existed.
	Restore(ctx context.Context, id uuid.UUID) error

	// List executes the composed query and returns matching tasks in
	// creation order. An empty result set is an empty slice, never an error.
	// Returns the query's composition error, if any, without executing.
	List(ctx context.Context, q TaskQuery) ([]*domain.Task, error)
}
