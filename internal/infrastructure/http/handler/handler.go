package handler

import (
	"context"
	"net/http"

	"github.com/expertteam/expert/internal/application/audit"
	"github.com/expertteam/expert/internal/application/auth"
	"github.com/expertteam/expert/internal/application/comment"
	"github.com/expertteam/expert/internal/application/manager"
	"github.com/expertteam/expert/internal/application/todo"
	"github.com/expertteam/expert/internal/application/user"
	"github.com/expertteam/expert/internal/domain"
	mw "github.com/expertteam/expert/internal/infrastructure/http/middleware"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// AuthService signs users up and in.
type AuthService interface {
	Signup(ctx context.Context, input auth.SignupInput) (string, error)
	Signin(ctx context.Context, email, password string) (string, error)
}

// TodoService creates, reads and searches todos.
type TodoService interface {
	CreateTodo(ctx context.Context, owner domain.AuthUser, title, contents string) (*domain.TodoWithOwner, error)
	GetTodo(ctx context.Context, id string) (*domain.TodoWithOwner, error)
	ListTodos(ctx context.Context, filter domain.TodoListFilter, params todo.PageParams) (*domain.Page[domain.TodoWithOwner], error)
	SearchTodos(ctx context.Context, input domain.TodoSearchCriteriaInput, params todo.PageParams) (*domain.Page[domain.TodoSummary], error)
}

// ManagerService manages todo collaborators.
type ManagerService interface {
	AssignManager(ctx context.Context, caller domain.AuthUser, todoID, managerUserID string) (*domain.ManagerWithUser, error)
	ListManagers(ctx context.Context, todoID string) ([]domain.ManagerWithUser, error)
	RemoveManager(ctx context.Context, caller domain.AuthUser, todoID, managerID string) error
}

// AuditService reads the manager assignment trail.
type AuditService interface {
	ManagerLogs(ctx context.Context, todoID string) ([]domain.ManagerLog, error)
}

// CommentService manages comments on todos.
type CommentService interface {
	AddComment(ctx context.Context, author domain.AuthUser, todoID, contents string) (*domain.CommentWithAuthor, error)
	ListComments(ctx context.Context, todoID string) ([]domain.CommentWithAuthor, error)
}

// UserService manages accounts and profile images.
type UserService interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ChangeRole(ctx context.Context, userID, role string) error
	SearchByNickname(ctx context.Context, nickname string) ([]domain.User, error)
	UploadProfileImage(ctx context.Context, userID string, upload user.ImageUpload) (string, error)
	ProfileImageURL(ctx context.Context, userID string) (string, error)
	PresignProfileImageUpload(ctx context.Context, filename string) (*user.PresignedUpload, error)
}

// Services bundles the application services the handlers adapt.
type Services struct {
	Auth     AuthService
	Todos    TodoService
	Managers ManagerService
	Audit    AuditService
	Comments CommentService
	Users    UserService
}

// Handler adapts HTTP requests to application service calls.
type Handler struct {
	auth     AuthService
	todos    TodoService
	managers ManagerService
	audit    AuditService
	comments CommentService
	users    UserService
}

// New creates the HTTP handlers.
func New(s Services) *Handler {
	return &Handler{
		auth:     s.Auth,
		todos:    s.Todos,
		managers: s.Managers,
		audit:    s.Audit,
		comments: s.Comments,
		users:    s.Users,
	}
}

// caller returns the authenticated user, answering 401 when there is none.
func caller(w http.ResponseWriter, r *http.Request) (domain.AuthUser, bool) {
	u, ok := mw.AuthUserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
	}
	return u, ok
}

// Compile-time checks that the application services satisfy the handler ports.
var (
	_ AuthService    = (*auth.Authenticator)(nil)
	_ TodoService    = (*todo.Service)(nil)
	_ ManagerService = (*manager.Service)(nil)
	_ AuditService   = (*audit.Recorder)(nil)
	_ CommentService = (*comment.Service)(nil)
	_ UserService    = (*user.Service)(nil)
)
