package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/expertteam/expert/internal/domain"
)

// CreateManager persists a manager assignment.
func (s *Store) CreateManager(ctx context.Context, m *domain.Manager) error {
	id, err := parseID(m.ID)
	if err != nil {
		return err
	}
	todoID, err := parseID(m.TodoID)
	if err != nil {
		return err
	}
	userID, err := parseID(m.UserID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO managers (id, todo_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)`,
		id, todoID, userID, m.CreatedAt)
	if err != nil {
		if uniqueConstraint(err) == "managers_todo_user_key" {
			return domain.ErrManagerAlreadyAssigned
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: todo or user", domain.ErrNotFound)
		}
		return fmt.Errorf("failed to create manager: %w", err)
	}
	return nil
}

// FindManagerByID retrieves a manager assignment.
func (s *Store) FindManagerByID(ctx context.Context, id string) (*domain.Manager, error) {
	mid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var m domain.Manager
	err = s.db.QueryRow(ctx,
		`SELECT id, todo_id, user_id, created_at FROM managers WHERE id = $1`, mid).
		Scan(&m.ID, &m.TodoID, &m.UserID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrManagerNotFound
		}
		return nil, fmt.Errorf("failed to get manager: %w", err)
	}
	return &m, nil
}

// ListManagers returns the todo's managers with their users, oldest assignment first.
func (s *Store) ListManagers(ctx context.Context, todoID string) ([]domain.ManagerWithUser, error) {
	tid, err := parseID(todoID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.todo_id, m.user_id, m.created_at, u.id, u.email, u.nickname
		FROM managers m
		JOIN users u ON u.id = m.user_id
		WHERE m.todo_id = $1
		ORDER BY m.created_at, m.id`, tid)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}

	managers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ManagerWithUser, error) {
		var m domain.ManagerWithUser
		err := row.Scan(&m.ID, &m.TodoID, &m.UserID, &m.CreatedAt,
			&m.User.ID, &m.User.Email, &m.User.Nickname)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan managers: %w", err)
	}
	return managers, nil
}

// DeleteManager removes a manager assignment.
func (s *Store) DeleteManager(ctx context.Context, id string) error {
	mid, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM managers WHERE id = $1`, mid)
	if err != nil {
		return fmt.Errorf("failed to delete manager: %w", err)
	}
	return checkRowsAffected(tag, domain.ErrManagerNotFound)
}
