package postgres

import (
	"context"
	"fmt"

	"github.com/expertteam/expert/internal/domain"
)

// CreateManagerLog appends an assignment audit entry.
// It always writes through the pool, so the entry commits on its own even when
// the store is bound to a transaction that later rolls back.
func (s *Store) CreateManagerLog(ctx context.Context, log *domain.ManagerLog) error {
	id, err := parseID(log.ID)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO manager_logs (id, todo_id, request_user_id, manager_user_id, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, log.TodoID, log.RequestUserID, log.ManagerUserID, string(log.Status), log.ErrorMessage, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create manager log: %w", err)
	}
	return nil
}

// ListManagerLogs returns the audit entries of a todo, oldest first.
func (s *Store) ListManagerLogs(ctx context.Context, todoID string) ([]domain.ManagerLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, todo_id, request_user_id, manager_user_id, status, error_message, created_at
		FROM manager_logs
		WHERE todo_id = $1
		ORDER BY created_at, id`, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list manager logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.ManagerLog
	for rows.Next() {
		var (
			l      domain.ManagerLog
			status string
		)
		if err := rows.Scan(&l.ID, &l.TodoID, &l.RequestUserID, &l.ManagerUserID, &status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan manager log: %w", err)
		}
		l.Status = domain.ManagerLogStatus(status)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
