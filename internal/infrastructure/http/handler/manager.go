package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// AssignManager handles POST /todos/{todoId}/managers.
func (h *Handler) AssignManager(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	req, err := decodeJSON[assignManagerRequest](r)
	if err != nil {
		writeBindError(w, r, err)
		return
	}

	m, err := h.managers.AssignManager(r.Context(), u, chi.URLParam(r, "todoId"), req.ManagerUserID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapManager(m))
}

// ListManagers handles GET /todos/{todoId}/managers.
func (h *Handler) ListManagers(w http.ResponseWriter, r *http.Request) {
	managers, err := h.managers.ListManagers(r.Context(), chi.URLParam(r, "todoId"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapSlice(managers, mapManager))
}

// ManagerLogs handles GET /admin/todos/{todoId}/manager-logs.
func (h *Handler) ManagerLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.audit.ManagerLogs(r.Context(), chi.URLParam(r, "todoId"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapSlice(logs, mapManagerLog))
}

// RemoveManager handles DELETE /todos/{todoId}/managers/{managerId}.
func (h *Handler) RemoveManager(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	err := h.managers.RemoveManager(r.Context(), u, chi.URLParam(r, "todoId"), chi.URLParam(r, "managerId"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}
