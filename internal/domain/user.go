package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors
var (
	ErrUserIDEmpty         = errors.New("user ID cannot be empty")
	ErrEmailEmpty          = errors.New("email cannot be empty")
	ErrEmailInvalid        = errors.New("invalid email format")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrHashedPasswordEmpty = errors.New("hashed password cannot be empty")
)

// bcrypt rejects inputs longer than 72 bytes.
const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// User represents a registered account that owns tasks.
// The core never mutates users; they are created at registration and
// referenced by ID everywhere else.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set transiently during registration
	HashedPassword string    `json:"-"` // Never exposed in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and plaintext password.
// The caller is responsible for hashing the password before storing the user.
// Returns an error if validation fails.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.Email == "" {
		return ErrEmailEmpty
	}

	if !validEmailFormat(u.Email) {
		return ErrEmailInvalid
	}

	if u.Password != "" {
		if len(u.Password) < minPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > maxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Users loaded from storage carry only the hash.
		return ErrHashedPasswordEmpty
	}

	return nil
}

// validEmailFormat performs a basic structural check of an email address:
// a local part, an @, and a domain containing an interior dot.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
