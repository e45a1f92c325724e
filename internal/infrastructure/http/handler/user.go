package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// GetUser handles GET /users/{userId}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapUser(u.Summary()))
}

// ChangePassword handles PUT /users for the authenticated user.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	req, err := decodeJSON[changePasswordRequest](r)
	if err != nil {
		writeBindError(w, r, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), u.ID, req.OldPassword, req.NewPassword); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}

// SearchUsers handles GET /users/search?nickname= with an exact nickname match.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.SearchByNickname(r.Context(), r.URL.Query().Get("nickname"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = mapUser(users[i].Summary())
	}
	response.OK(w, out)
}

// ChangeRole handles PATCH /admin/users/{userId}.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[changeRoleRequest](r)
	if err != nil {
		writeBindError(w, r, err)
		return
	}

	if err := h.users.ChangeRole(r.Context(), chi.URLParam(r, "userId"), req.Role); err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.NoContent(w)
}
