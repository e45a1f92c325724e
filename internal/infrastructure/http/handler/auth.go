package handler

import (
	"log/slog"
	"net/http"

	"github.com/expertteam/expert/internal/application/auth"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// Signup handles POST /auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[signupRequest](r)
	if err != nil {
		writeBindError(w, r, err)
		return
	}

	token, err := h.auth.Signup(r.Context(), auth.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Role:     req.UserRole,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "user signed up via HTTP", "nickname", req.Nickname)
	response.Created(w, tokenResponse{BearerToken: token})
}

// Signin handles POST /auth/signin.
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[signinRequest](r)
	if err != nil {
		writeBindError(w, r, err)
		return
	}

	token, err := h.auth.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, tokenResponse{BearerToken: token})
}
