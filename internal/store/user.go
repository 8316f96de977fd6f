package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The plaintext password is
	// hashed before storage and cleared from the entity.
	// Returns ErrEmailExists if the email is already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by its unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
