package handler

import (
	"time"

	"github.com/expertteam/expert/internal/domain"
)

// Request bodies.

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Nickname string `json:"nickname" validate:"required,max=100"`
	UserRole string `json:"userRole" validate:"required,oneof=USER ADMIN user admin"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createTodoRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Contents string `json:"contents" validate:"required"`
}

type assignManagerRequest struct {
	ManagerUserID string `json:"managerUserId" validate:"required,uuid"`
}

type createCommentRequest struct {
	Contents string `json:"contents" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=USER ADMIN user admin"`
}

// Response bodies.

type tokenResponse struct {
	BearerToken string `json:"bearerToken"`
}

type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

type todoResponse struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Contents   string       `json:"contents"`
	Weather    string       `json:"weather"`
	User       userResponse `json:"user"`
	CreatedAt  time.Time    `json:"createdAt"`
	ModifiedAt time.Time    `json:"modifiedAt"`
}

type todoSummaryResponse struct {
	Title        string `json:"title"`
	ManagerCount int64  `json:"managerCount"`
	CommentCount int64  `json:"commentCount"`
}

type pageResponse[T any] struct {
	Content    []T   `json:"content"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type managerResponse struct {
	ID   string       `json:"id"`
	User userResponse `json:"user"`
}

type managerLogResponse struct {
	ID            string    `json:"id"`
	TodoID        string    `json:"todoId"`
	RequestUserID string    `json:"requestUserId"`
	ManagerUserID string    `json:"managerUserId"`
	Status        string    `json:"status"`
	ErrorMessage  *string   `json:"errorMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type commentResponse struct {
	ID        string       `json:"id"`
	Contents  string       `json:"contents"`
	User      userResponse `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
}

type profileImageResponse struct {
	ProfileImageURL string `json:"profileImageUrl"`
}

type presignedURLResponse struct {
	PresignedURL string `json:"presignedUrl"`
	Key          string `json:"key"`
}

// Mappers.

func mapUser(u domain.UserSummary) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Nickname: u.Nickname}
}

func mapTodo(t *domain.TodoWithOwner) todoResponse {
	return todoResponse{
		ID:         t.ID,
		Title:      t.Title,
		Contents:   t.Contents,
		Weather:    t.Weather,
		User:       mapUser(t.Owner),
		CreatedAt:  t.CreatedAt,
		ModifiedAt: t.ModifiedAt,
	}
}

func mapTodoSummary(s *domain.TodoSummary) todoSummaryResponse {
	return todoSummaryResponse{Title: s.Title, ManagerCount: s.ManagerCount, CommentCount: s.CommentCount}
}

func mapManager(m *domain.ManagerWithUser) managerResponse {
	return managerResponse{ID: m.ID, User: mapUser(m.User)}
}

func mapManagerLog(l *domain.ManagerLog) managerLogResponse {
	return managerLogResponse{
		ID:            l.ID,
		TodoID:        l.TodoID,
		RequestUserID: l.RequestUserID,
		ManagerUserID: l.ManagerUserID,
		Status:        string(l.Status),
		ErrorMessage:  l.ErrorMessage,
		CreatedAt:     l.CreatedAt,
	}
}

func mapComment(c *domain.CommentWithAuthor) commentResponse {
	return commentResponse{ID: c.ID, Contents: c.Contents, User: mapUser(c.Author), CreatedAt: c.CreatedAt}
}

// mapSlice applies fn to each element by pointer. The result is never nil.
func mapSlice[T, R any](in []T, fn func(*T) R) []R {
	out := make([]R, len(in))
	for i := range in {
		out[i] = fn(&in[i])
	}
	return out
}

func mapPage[T, R any](p *domain.Page[T], fn func(*T) R) pageResponse[R] {
	return pageResponse[R]{
		Content:    mapSlice(p.Content, fn),
		Page:       p.Page,
		Size:       p.Size,
		Total:      p.Total,
		TotalPages: p.TotalPages(),
	}
}
