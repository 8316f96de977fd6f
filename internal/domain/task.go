package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskOwnerIDEmpty is returned when a task's owner ID is empty or nil.
	ErrTaskOwnerIDEmpty = errors.New("task owner ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")
)

// Task represents a single to-do item owned by a user.
// OwnerID is fixed at creation and never changes afterwards; all mutations
// go through the methods below so UpdatedAt stays current. DeletedAt is the
// soft-delete marker: a non-nil value hides the task from default queries
// while keeping the row restorable.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// NewTask creates a new Task with the given owner and title.
// It generates a new UUID for the task ID, defaults the task to not
// completed with low priority, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTask(ownerID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		IsCompleted: false,
		Priority:    PriorityLow,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.OwnerID == uuid.Nil {
		return ErrTaskOwnerIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	return nil
}

// IsDeleted reports whether the task has been soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// UpdateTitle replaces the task's title and updates the UpdatedAt timestamp.
// Returns an error if the new title is empty.
func (t *Task) UpdateTitle(title string) error {
	if title == "" {
		return ErrTaskTitleEmpty
	}

	t.Title = title
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateDescription replaces the task's description and updates the
// UpdatedAt timestamp. A nil description clears the field.
func (t *Task) UpdateDescription(description *string) {
	t.Description = description
	t.UpdatedAt = time.Now().UTC()
}

// SetCompleted sets the completion flag and updates the UpdatedAt timestamp.
func (t *Task) SetCompleted(completed bool) {
	t.IsCompleted = completed
	t.UpdatedAt = time.Now().UTC()
}

// UpdateDueDate replaces the task's due date and updates the UpdatedAt
// timestamp. A nil due date clears the field.
func (t *Task) UpdateDueDate(dueDate *time.Time) {
	if dueDate != nil {
		utc := dueDate.UTC()
		dueDate = &utc
	}
	t.DueDate = dueDate
	t.UpdatedAt = time.Now().UTC()
}

// UpdatePriority replaces the task's priority and updates the UpdatedAt
// timestamp. Returns an error if the priority is not a declared value.
func (t *Task) UpdatePriority(priority Priority) error {
	if !priority.IsValid() {
		return ErrInvalidPriority
	}

	t.Priority = priority
	t.UpdatedAt = time.Now().UTC()
	return nil
}
