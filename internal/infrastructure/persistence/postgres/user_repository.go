package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/expertteam/expert/internal/domain"
)

const userColumns = `id, email, password_hash, nickname, role, profile_image_key, last_seen_at, created_at, modified_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &role,
		&u.ProfileImageKey, &u.LastSeenAt, &u.CreatedAt, &u.ModifiedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	return &u, nil
}

// CreateUser persists a new user.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	id, err := parseID(user.ID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, nickname, role, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, user.Email, user.PasswordHash, user.Nickname, string(user.Role), user.CreatedAt, user.ModifiedAt)
	if err != nil {
		if uniqueConstraint(err) == "users_email_key" {
			return fmt.Errorf("%w: %s", domain.ErrEmailAlreadyExists, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// FindUserByID retrieves a user by ID.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// FindUsersByNickname returns users whose nickname matches exactly.
// The equality predicate is served by idx_users_nickname.
func (s *Store) FindUsersByNickname(ctx context.Context, nickname string) ([]domain.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE nickname = $1 ORDER BY created_at, id`, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// UpdateLastSeen records the user's most recent activity.
// Older timestamps never overwrite newer ones, so out-of-order updates are harmless.
func (s *Store) UpdateLastSeen(ctx context.Context, userID string, timestamp time.Time) error {
	uid, err := parseID(userID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE users SET last_seen_at = $2
		WHERE id = $1 AND (last_seen_at IS NULL OR last_seen_at < $2)`,
		uid, timestamp)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}

// UpdatePassword replaces the user's password hash.
func (s *Store) UpdatePassword(ctx context.Context, id, passwordHash string, modifiedAt time.Time) error {
	return s.updateUser(ctx, id, "password_hash", passwordHash, modifiedAt)
}

// UpdateRole changes the user's role.
func (s *Store) UpdateRole(ctx context.Context, id string, role domain.UserRole, modifiedAt time.Time) error {
	return s.updateUser(ctx, id, "role", string(role), modifiedAt)
}

// UpdateProfileImageKey stores the object key of the user's profile image.
func (s *Store) UpdateProfileImageKey(ctx context.Context, id, key string, modifiedAt time.Time) error {
	return s.updateUser(ctx, id, "profile_image_key", key, modifiedAt)
}

// updateUser sets a single column. column is always a constant from this file.
func (s *Store) updateUser(ctx context.Context, id, column string, value any, modifiedAt time.Time) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE users SET `+column+` = $2, modified_at = $3 WHERE id = $1`,
		uid, value, modifiedAt)
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", column, err)
	}
	return checkRowsAffected(tag, domain.ErrUserNotFound)
}
