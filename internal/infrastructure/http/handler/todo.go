package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/expertteam/expert/internal/domain"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// CreateTodo handles POST /todos.
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	owner, ok := caller(w, r)
	if !ok {
		return
	}

	req, err := decodeJSON[createTodoRequest](r)
	if err != nil {
		writeBindError(w, r, err)
		return
	}

	t, err := h.todos.CreateTodo(r.Context(), owner, req.Title, req.Contents)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create todo via HTTP",
			"user_id", owner.ID,
			"error", err)
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "todo created via HTTP", "todo_id", t.ID)
	response.Created(w, mapTodo(t))
}

// GetTodo handles GET /todos/{todoId}.
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	t, err := h.todos.GetTodo(r.Context(), chi.URLParam(r, "todoId"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapTodo(t))
}

// ListTodos handles GET /todos?page=&size=&weather=&startDate=&endDate=.
// The date range applies to the modification time.
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r.URL.Query())
	filter := domain.TodoListFilter{
		Weather:      q.text("weather"),
		ModifiedFrom: q.dateTime("startDate"),
		ModifiedTo:   q.dateTime("endDate"),
	}
	params := q.page()
	if err := q.err(); err != nil {
		writeBindError(w, r, err)
		return
	}

	page, err := h.todos.ListTodos(r.Context(), filter, params)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapPage(page, mapTodo))
}

// SearchTodos handles GET /todos/search?title=&startDate=&endDate=&managerNickname=&page=&size=.
// Every filter is optional; the date range applies to the creation time.
func (h *Handler) SearchTodos(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r.URL.Query())
	input := domain.TodoSearchCriteriaInput{
		Title:           q.text("title"),
		StartDate:       q.dateTime("startDate"),
		EndDate:         q.dateTime("endDate"),
		ManagerNickname: q.text("managerNickname"),
	}
	params := q.page()
	if err := q.err(); err != nil {
		writeBindError(w, r, err)
		return
	}

	page, err := h.todos.SearchTodos(r.Context(), input, params)
	if err != nil {
		slog.ErrorContext(r.Context(), "todo search failed", "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapPage(page, mapTodoSummary))
}
