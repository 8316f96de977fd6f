package search

import (
	"time"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// Document is the flat, engine-agnostic projection of a task.
// Priority is carried as its scalar string value and every timestamp as an
// epoch second count, or null when the source field is absent.
type Document struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"is_completed"`
	OwnerID     string  `json:"owner_id"`
	Priority    string  `json:"priority"`
	DueDate     *int64  `json:"due_date"`
	CreatedAt   *int64  `json:"created_at"`
	UpdatedAt   *int64  `json:"updated_at"`
}

// Project maps a task to its search document. The mapping is total and
// deterministic: the same task state always produces the same document, so
// re-indexing after a failure is safe to repeat.
func Project(t *domain.Task) Document {
	return Document{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		OwnerID:     t.OwnerID.String(),
		Priority:    t.Priority.String(),
		DueDate:     epoch(t.DueDate),
		CreatedAt:   epochValue(t.CreatedAt),
		UpdatedAt:   epochValue(t.UpdatedAt),
	}
}

// epoch converts an optional timestamp to epoch seconds, preserving null.
func epoch(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

// epochValue converts a required timestamp to epoch seconds, mapping the
// zero value to null.
func epochValue(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	v := t.Unix()
	return &v
}
