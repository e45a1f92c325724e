package manager

import (
	"context"

	"github.com/expertteam/expert/internal/domain"
)

// Repository defines storage operations for manager assignments.
type Repository interface {
	// FindTodoByID retrieves a todo with its owner. Returns domain.ErrTodoNotFound if missing.
	FindTodoByID(ctx context.Context, id string) (*domain.TodoWithOwner, error)

	// FindUserByID retrieves a user. Returns domain.ErrUserNotFound if missing.
	FindUserByID(ctx context.Context, id string) (*domain.User, error)

	// CreateManager persists an assignment.
	// Returns domain.ErrManagerAlreadyAssigned if the user already manages the todo.
	CreateManager(ctx context.Context, m *domain.Manager) error

	// FindManagerByID retrieves an assignment. Returns domain.ErrManagerNotFound if missing.
	FindManagerByID(ctx context.Context, id string) (*domain.Manager, error)

	// ListManagers returns the todo's managers with their users, oldest assignment first.
	ListManagers(ctx context.Context, todoID string) ([]domain.ManagerWithUser, error)

	// DeleteManager removes an assignment. Returns domain.ErrManagerNotFound if missing.
	DeleteManager(ctx context.Context, id string) error
}

// Store is a Repository that can run a callback atomically.
type Store interface {
	Repository

	// AtomicManagers runs fn in a transaction; fn's error rolls it back.
	AtomicManagers(ctx context.Context, fn func(repo Repository) error) error
}

// AuditRecorder records assignment attempts outside the assignment transaction.
type AuditRecorder interface {
	RecordSuccess(ctx context.Context, todoID, requestUserID, managerUserID string) error
	RecordFailure(ctx context.Context, todoID, requestUserID, managerUserID string, cause error) error
}
