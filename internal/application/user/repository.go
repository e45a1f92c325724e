package user

import (
	"context"
	"io"
	"time"

	"github.com/expertteam/expert/internal/domain"
)

// Repository defines storage operations for user accounts.
type Repository interface {
	// FindUserByID retrieves a user. Returns domain.ErrUserNotFound if missing.
	FindUserByID(ctx context.Context, id string) (*domain.User, error)

	// FindUsersByNickname returns every user whose nickname equals nickname exactly.
	FindUsersByNickname(ctx context.Context, nickname string) ([]domain.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string, modifiedAt time.Time) error

	// UpdateRole changes the user's role.
	UpdateRole(ctx context.Context, id string, role domain.UserRole, modifiedAt time.Time) error

	// UpdateProfileImageKey stores the object key of the user's profile image.
	UpdateProfileImageKey(ctx context.Context, id, key string, modifiedAt time.Time) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// ObjectStore stores binary objects and produces time-limited URLs for them.
type ObjectStore interface {
	// Put uploads the object under key.
	Put(ctx context.Context, key, contentType string, r io.Reader) error

	// SignedURL returns a URL that allows method (GET or PUT) on key until expiry.
	SignedURL(ctx context.Context, key, method string, expiry time.Duration) (string, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}
