package manager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/expertteam/expert/internal/domain"
)

// Service manages collaborator assignments on todos.
type Service struct {
	store Store
	audit AuditRecorder
}

// NewService creates a new manager service.
func NewService(store Store, audit AuditRecorder) *Service {
	return &Service{store: store, audit: audit}
}

// AssignManager makes managerUserID a manager of the todo.
// Only the todo owner may assign, the owner cannot assign themselves,
// and a user can manage a todo at most once.
// Every attempt is audited whether or not it succeeds.
func (s *Service) AssignManager(ctx context.Context, caller domain.AuthUser, todoID, managerUserID string) (*domain.ManagerWithUser, error) {
	var result *domain.ManagerWithUser

	err := s.store.AtomicManagers(ctx, func(repo Repository) error {
		todo, err := repo.FindTodoByID(ctx, todoID)
		if err != nil {
			return err
		}
		if todo.UserID != caller.ID {
			return domain.ErrNotTodoOwner
		}
		if managerUserID == todo.UserID {
			return domain.ErrSelfAssignment
		}

		managerUser, err := repo.FindUserByID(ctx, managerUserID)
		if err != nil {
			return err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate id: %w", err)
		}

		m := domain.Manager{
			ID:        id.String(),
			TodoID:    todo.ID,
			UserID:    managerUser.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.CreateManager(ctx, &m); err != nil {
			return err
		}

		result = &domain.ManagerWithUser{Manager: m, User: managerUser.Summary()}
		return nil
	})

	if err != nil {
		if auditErr := s.audit.RecordFailure(ctx, todoID, caller.ID, managerUserID, err); auditErr != nil {
			slog.ErrorContext(ctx, "failed to record manager assignment failure",
				"todo_id", todoID,
				"error", auditErr)
		}
		return nil, err
	}

	if auditErr := s.audit.RecordSuccess(ctx, todoID, caller.ID, managerUserID); auditErr != nil {
		slog.ErrorContext(ctx, "failed to record manager assignment",
			"todo_id", todoID,
			"error", auditErr)
	}

	return result, nil
}

// ListManagers returns the managers of a todo.
func (s *Service) ListManagers(ctx context.Context, todoID string) ([]domain.ManagerWithUser, error) {
	if _, err := s.store.FindTodoByID(ctx, todoID); err != nil {
		return nil, err
	}
	managers, err := s.store.ListManagers(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	return managers, nil
}

// RemoveManager deletes an assignment. Only the todo owner may remove managers.
func (s *Service) RemoveManager(ctx context.Context, caller domain.AuthUser, todoID, managerID string) error {
	return s.store.AtomicManagers(ctx, func(repo Repository) error {
		todo, err := repo.FindTodoByID(ctx, todoID)
		if err != nil {
			return err
		}
		if todo.UserID != caller.ID {
			return domain.ErrNotTodoOwner
		}

		m, err := repo.FindManagerByID(ctx, managerID)
		if err != nil {
			return err
		}
		if m.TodoID != todo.ID {
			return domain.ErrManagerNotFound
		}

		return repo.DeleteManager(ctx, m.ID)
	})
}
