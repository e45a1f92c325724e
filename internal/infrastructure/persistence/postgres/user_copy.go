package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/expertteam/expert/internal/domain"
)

// CopyUsers bulk-inserts users through the COPY protocol in a single statement.
// Uniqueness violations abort the whole batch.
func (s *Store) CopyUsers(ctx context.Context, users []domain.User) (int64, error) {
	if len(users) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(users))
	for i := range users {
		u := &users[i]
		id, err := parseID(u.ID)
		if err != nil {
			return 0, err
		}
		rows[i] = []any{id, u.Email, u.PasswordHash, u.Nickname, string(u.Role), u.CreatedAt, u.ModifiedAt}
	}

	n, err := s.db.CopyFrom(ctx,
		pgx.Identifier{"users"},
		[]string{"id", "email", "password_hash", "nickname", "role", "created_at", "modified_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if uniqueConstraint(err) == "users_email_key" {
			return 0, fmt.Errorf("%w: %w", domain.ErrEmailAlreadyExists, err)
		}
		return 0, fmt.Errorf("failed to copy users: %w", err)
	}
	return n, nil
}
