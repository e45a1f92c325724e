package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/expertteam/expert/internal/domain"
)

// CreateComment persists a comment.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	id, err := parseID(c.ID)
	if err != nil {
		return err
	}
	todoID, err := parseID(c.TodoID)
	if err != nil {
		return err
	}
	userID, err := parseID(c.UserID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO comments (id, todo_id, user_id, contents, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, todoID, userID, c.Contents, c.CreatedAt, c.ModifiedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: todo %s", domain.ErrTodoNotFound, c.TodoID)
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments returns the todo's comments with their authors, oldest first.
func (s *Store) ListComments(ctx context.Context, todoID string) ([]domain.CommentWithAuthor, error) {
	tid, err := parseID(todoID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.todo_id, c.user_id, c.contents, c.created_at, c.modified_at,
			u.id, u.email, u.nickname
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.todo_id = $1
		ORDER BY c.created_at, c.id`, tid)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CommentWithAuthor, error) {
		var c domain.CommentWithAuthor
		err := row.Scan(&c.ID, &c.TodoID, &c.UserID, &c.Contents, &c.CreatedAt, &c.ModifiedAt,
			&c.Author.ID, &c.Author.Email, &c.Author.Nickname)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan comments: %w", err)
	}
	return comments, nil
}
