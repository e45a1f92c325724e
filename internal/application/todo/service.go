package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expertteam/expert/internal/domain"
	"github.com/expertteam/expert/internal/ptr"
)

// Default configuration values.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Config holds configuration for the Service.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
}

// PageParams carries optional one-based page index and page size.
// Nil fields take the configured defaults; present values are validated, never clamped.
type PageParams struct {
	Page *int
	Size *int
}

// Service provides business logic for todo management.
type Service struct {
	repo    Repository
	weather WeatherProvider
	config  Config
}

// NewService creates a new todo service.
// Applies application defaults for zero or invalid config values.
func NewService(repo Repository, weather WeatherProvider, config Config) *Service {
	if config.DefaultPageSize <= 0 {
		config.DefaultPageSize = DefaultPageSize
	}
	if config.MaxPageSize <= 0 {
		config.MaxPageSize = MaxPageSize
	}
	if config.DefaultPageSize > config.MaxPageSize {
		config.DefaultPageSize = config.MaxPageSize
	}

	return &Service{
		repo:    repo,
		weather: weather,
		config:  config,
	}
}

// CreateTodo creates a todo owned by the authenticated user and stamps it with today's weather.
func (s *Service) CreateTodo(ctx context.Context, owner domain.AuthUser, titleStr, contents string) (*domain.TodoWithOwner, error) {
	title, err := domain.NewTitle(titleStr)
	if err != nil {
		return nil, err
	}

	contents = strings.TrimSpace(contents)
	if contents == "" {
		return nil, domain.ErrContentsRequired
	}

	weather, err := s.weather.TodayWeather(ctx)
	if err != nil {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	todo := &domain.Todo{
		ID:         idObj.String(),
		Title:      title.String(),
		Contents:   contents,
		Weather:    weather,
		UserID:     owner.ID,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	if err := s.repo.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return &domain.TodoWithOwner{
		Todo: *todo,
		Owner: domain.UserSummary{
			ID:       owner.ID,
			Email:    owner.Email,
			Nickname: owner.Nickname,
		},
	}, nil
}

// GetTodo retrieves a todo with its owner.
func (s *Service) GetTodo(ctx context.Context, id string) (*domain.TodoWithOwner, error) {
	if id == "" {
		return nil, domain.ErrTodoNotFound
	}
	return s.repo.FindTodoByID(ctx, id)
}

// ListTodos returns a page of todos ordered by modification time, newest first.
func (s *Service) ListTodos(ctx context.Context, filter domain.TodoListFilter, params PageParams) (*domain.Page[domain.TodoWithOwner], error) {
	req, err := s.pageRequest(params)
	if err != nil {
		return nil, err
	}

	todos, total, err := s.repo.ListTodos(ctx, filter.Normalize(), req)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return domain.NewPage(todos, req, total), nil
}

// SearchTodos runs the dynamic todo search and wraps the result in a page envelope.
// Pagination input is validated before any query is built.
func (s *Service) SearchTodos(ctx context.Context, input domain.TodoSearchCriteriaInput, params PageParams) (*domain.Page[domain.TodoSummary], error) {
	req, err := s.pageRequest(params)
	if err != nil {
		return nil, err
	}

	criteria := domain.NewTodoSearchCriteria(input)

	summaries, total, err := s.repo.SearchTodos(ctx, criteria, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search todos: %w", err)
	}

	return domain.NewPage(summaries, req, total), nil
}

func (s *Service) pageRequest(params PageParams) (domain.PageRequest, error) {
	return domain.NewPageRequest(
		ptr.Deref(params.Page, 1),
		ptr.Deref(params.Size, s.config.DefaultPageSize),
		s.config.MaxPageSize,
	)
}
