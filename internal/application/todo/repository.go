package todo

import (
	"context"

	"github.com/expertteam/expert/internal/domain"
)

// Repository defines storage operations for todos.
type Repository interface {
	// CreateTodo persists a new todo.
	CreateTodo(ctx context.Context, todo *domain.Todo) error

	// FindTodoByID retrieves a todo together with its owner.
	// Returns domain.ErrTodoNotFound if the todo does not exist.
	FindTodoByID(ctx context.Context, id string) (*domain.TodoWithOwner, error)

	// ListTodos returns one page of todos ordered by modification time (newest first)
	// and the total number of todos matching the filter.
	ListTodos(ctx context.Context, filter domain.TodoListFilter, page domain.PageRequest) ([]domain.TodoWithOwner, int64, error)

	// SearchTodos returns one page of todo projections matching the criteria,
	// ordered by creation time (newest first), and the number of distinct todos
	// matching the same criteria.
	SearchTodos(ctx context.Context, criteria domain.TodoSearchCriteria, page domain.PageRequest) ([]domain.TodoSummary, int64, error)
}

// WeatherProvider supplies the current weather recorded on new todos.
type WeatherProvider interface {
	TodayWeather(ctx context.Context) (string, error)
}
