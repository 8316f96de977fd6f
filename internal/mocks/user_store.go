package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// MemoryUserStore is an in-memory implementation of store.UserStore.
// Passwords are hashed with bcrypt.MinCost so login flows work end to end
// in tests without the production cost factor.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User

	CreateErr error
}

var _ store.UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[uuid.UUID]*domain.User),
	}
}

// Create implements store.UserStore.
func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// GetByID implements store.UserStore.
func (s *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByEmail implements store.UserStore.
func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrUserNotFound
}
