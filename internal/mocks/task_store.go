package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// MemoryTaskStore is an in-memory implementation of store.TaskStore. It
// evaluates queries with TaskQuery.Matches, so tests exercise the same
// filter semantics the postgres store compiles to SQL.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*domain.Task
	order []uuid.UUID // creation order

	// Now is the reference instant used when evaluating queries and
	// stamping deletions. Defaults to time.Now when nil.
	Now func() time.Time

	// Error overrides for failure-path tests. When set, the matching
	// method returns the error without touching state.
	CreateErr error
	UpdateErr error
	ListErr   error
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
	}
}

func (s *MemoryTaskStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create implements store.TaskStore.
func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}
	s.tasks[task.ID] = cloneTask(task)
	s.order = append(s.order, task.ID)
	return nil
}

// GetByID implements store.TaskStore.
func (s *MemoryTaskStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
	includeTrashed bool,
) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if !includeTrashed && task.IsDeleted() {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// Update implements store.TaskStore. Only live tasks are updatable; the
// owner and creation timestamp of the stored task are preserved.
func (s *MemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok || existing.IsDeleted() {
		return store.ErrTaskNotFound
	}

	updated := cloneTask(task)
	updated.OwnerID = existing.OwnerID
	updated.CreatedAt = existing.CreatedAt
	updated.DeletedAt = nil
	s.tasks[task.ID] = updated
	return nil
}

// SoftDelete implements store.TaskStore.
func (s *MemoryTaskStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	if task.IsDeleted() {
		return nil
	}

	now := s.now()
	task.DeletedAt = &now
	task.UpdatedAt = now
	return nil
}

// Restore implements store.TaskStore.
func (s *MemoryTaskStore) Restore(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return store.ErrTaskNotFound
	}
	if !task.IsDeleted() {
		return nil
	}

	task.DeletedAt = nil
	task.UpdatedAt = s.now()
	return nil
}

// List implements store.TaskStore, returning matches in creation order.
func (s *MemoryTaskStore) List(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	if err := q.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ref := s.now()
	result := make([]*domain.Task, 0)
	for _, id := range s.order {
		task := s.tasks[id]
		if q.Matches(task, ref) {
			result = append(result, cloneTask(task))
		}
	}
	return result, nil
}

// cloneTask copies a task so callers cannot mutate stored state.
func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.Description != nil {
		d := *t.Description
		clone.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		clone.DueDate = &d
	}
	if t.DeletedAt != nil {
		d := *t.DeletedAt
		clone.DeletedAt = &d
	}
	return &clone
}
