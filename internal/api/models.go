package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskhub/taskhub-api/internal/domain"
)

// timestampLayout is the wire format for all task timestamps.
const timestampLayout = "2006-01-02 15:04:05"

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MessageResponse defines a plain confirmation message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse defines the payload returned for the current-user endpoint.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"created_at"`
}

// NewUserResponse builds a UserResponse from a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(timestampLayout),
	}
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"        validate:"required,min=1,max=255"`
	Description *string `json:"description"  validate:"omitempty,max=10000"`
	IsCompleted *bool   `json:"is_completed"`
	DueDate     *string `json:"due_date"     validate:"omitempty"`
	Priority    *string `json:"priority"     validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"        validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"  validate:"omitempty,max=10000"`
	IsCompleted *bool   `json:"is_completed"`
	DueDate     *string `json:"due_date"     validate:"omitempty"`
	Priority    *string `json:"priority"     validate:"omitempty,oneof=low medium high"`
}

// TaskResponse defines the payload returned for a single task.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	DueDate     *string   `json:"due_date"`
	Priority    string    `json:"priority"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	DeletedAt   *string   `json:"deleted_at,omitempty"`
}

// NewTaskResponse builds a TaskResponse from a domain task.
func NewTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		DueDate:     formatOptionalTime(t.DueDate),
		Priority:    t.Priority.String(),
		CreatedAt:   t.CreatedAt.UTC().Format(timestampLayout),
		UpdatedAt:   t.UpdatedAt.UTC().Format(timestampLayout),
		DeletedAt:   formatOptionalTime(t.DeletedAt),
	}
}

// NewTaskListResponse builds responses for a slice of tasks, preserving
// order. It always returns a non-nil slice so empty lists serialize as [].
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}
