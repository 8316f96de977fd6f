package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("creates valid user", func(t *testing.T) {
		t.Parallel()
		user, err := NewUser("test@example.com", "password123")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, "password123", user.Password)
		assert.Empty(t, user.HashedPassword)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name     string
			email    string
			password string
			wantErr  error
		}{
			{"empty email", "", "password123", ErrEmailEmpty},
			{"no at sign", "testexample.com", "password123", ErrEmailInvalid},
			{"no domain dot", "test@example", "password123", ErrEmailInvalid},
			{"short password", "test@example.com", "short", ErrPasswordTooShort},
			{"long password", "test@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
		}

		for _, tc := range cases {
			_, err := NewUser(tc.email, tc.password)
			assert.ErrorIs(t, err, tc.wantErr, tc.name)
		}
	})
}

func TestUserValidateHashedOnly(t *testing.T) {
	t.Parallel()

	// Users loaded from storage carry a hash and no plaintext password.
	user := User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	require.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrHashedPasswordEmpty)
}
