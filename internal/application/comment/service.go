package comment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expertteam/expert/internal/domain"
)

// Repository defines storage operations for comments.
type Repository interface {
	// FindTodoByID retrieves a todo. Returns domain.ErrTodoNotFound if missing.
	FindTodoByID(ctx context.Context, id string) (*domain.TodoWithOwner, error)

	// CreateComment persists a comment.
	CreateComment(ctx context.Context, c *domain.Comment) error

	// ListComments returns the todo's comments with authors, oldest first.
	ListComments(ctx context.Context, todoID string) ([]domain.CommentWithAuthor, error)
}

// Service manages comments on todos.
type Service struct {
	repo Repository
}

// NewService creates a new comment service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddComment attaches a comment from the authenticated user to a todo.
func (s *Service) AddComment(ctx context.Context, author domain.AuthUser, todoID, contents string) (*domain.CommentWithAuthor, error) {
	contents = strings.TrimSpace(contents)
	if contents == "" {
		return nil, domain.ErrContentsRequired
	}

	if _, err := s.repo.FindTodoByID(ctx, todoID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	c := domain.Comment{
		ID:         id.String(),
		TodoID:     todoID,
		UserID:     author.ID,
		Contents:   contents,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.repo.CreateComment(ctx, &c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return &domain.CommentWithAuthor{
		Comment: c,
		Author:  domain.UserSummary{ID: author.ID, Email: author.Email, Nickname: author.Nickname},
	}, nil
}

// ListComments returns the comments of a todo.
func (s *Service) ListComments(ctx context.Context, todoID string) ([]domain.CommentWithAuthor, error) {
	if _, err := s.repo.FindTodoByID(ctx, todoID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
