package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/expertteam/expert/internal/application/user"
	"github.com/expertteam/expert/internal/domain"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// profileImageField is the multipart form field carrying the image.
const profileImageField = "image"

// multipartMemory bounds the part of a multipart body kept in memory.
const multipartMemory = 1 << 20

// UploadProfileImage handles POST /users/profile-image (multipart, field "image").
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		response.BadRequest(w, "expected multipart form data")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(profileImageField)
	if err != nil {
		response.ValidationError(w, profileImageField, "file is required")
		return
	}
	defer file.Close()

	url, err := h.users.UploadProfileImage(r.Context(), u.ID, user.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidImage) {
			slog.ErrorContext(r.Context(), "failed to upload profile image",
				"user_id", u.ID,
				"error", err)
		}
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, profileImageResponse{ProfileImageURL: url})
}

// GetProfileImage handles GET /users/profile-image.
func (h *Handler) GetProfileImage(w http.ResponseWriter, r *http.Request) {
	u, ok := caller(w, r)
	if !ok {
		return
	}

	url, err := h.users.ProfileImageURL(r.Context(), u.ID)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, profileImageResponse{ProfileImageURL: url})
}

// PresignProfileImage handles POST /users/profile-image/presigned-url?filename=.
func (h *Handler) PresignProfileImage(w http.ResponseWriter, r *http.Request) {
	upload, err := h.users.PresignProfileImageUpload(r.Context(), r.URL.Query().Get("filename"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, presignedURLResponse{PresignedURL: upload.URL, Key: upload.Key})
}
