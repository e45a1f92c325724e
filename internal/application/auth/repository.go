package auth

import (
	"context"
	"time"

	"github.com/expertteam/expert/internal/domain"
)

// Repository defines storage operations for authentication.
type Repository interface {
	// CreateUser persists a new user.
	// Returns domain.ErrEmailAlreadyExists if the email is taken.
	CreateUser(ctx context.Context, user *domain.User) error

	// FindUserByEmail retrieves a user by normalized email.
	// Returns domain.ErrUserNotFound if no user has that email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLastSeen records the last time the user made an authenticated request.
	UpdateLastSeen(ctx context.Context, userID string, timestamp time.Time) error
}

// TokenManager issues and verifies bearer tokens.
type TokenManager interface {
	// Issue creates a signed token carrying the user's identity claims.
	Issue(user *domain.User) (string, error)

	// Parse verifies a token and returns the identity it carries.
	// Returns domain.ErrTokenExpired, domain.ErrTokenMalformed or domain.ErrTokenUnsupported.
	Parse(token string) (*domain.AuthUser, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
