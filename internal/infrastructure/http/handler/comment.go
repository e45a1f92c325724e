package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// AddComment handles POST /todos/{todoId}/comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	req, err := decodeJSON[createCommentRequest](r)
	if err != nil {
		writeBindError(w, r, err)
		return
	}

	c, err := h.comments.AddComment(r.Context(), u, chi.URLParam(r, "todoId"), req.Contents)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, mapComment(c))
}

// ListComments handles GET /todos/{todoId}/comments.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.ListComments(r.Context(), chi.URLParam(r, "todoId"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, mapSlice(comments, mapComment))
}
