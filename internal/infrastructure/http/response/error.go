package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/expertteam/expert/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details,omitempty"`
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, "INVALID_REQUEST", message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with a single field detail.
func ValidationError(w http.ResponseWriter, field, issue string) {
	ValidationErrors(w, []ErrorField{{Field: field, Issue: issue}})
}

// ValidationErrors sends a 400 validation error with field details.
func ValidationErrors(w http.ResponseWriter, fields []ErrorField) {
	write(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed",
			Details: fields,
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, "NOT_FOUND", resource+" not found", http.StatusNotFound)
}

// Unauthorized sends a 401 Unauthorized error.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, "UNAUTHORIZED", message, http.StatusUnauthorized)
}

// InvalidToken sends a 400 error for bearer tokens that are structurally unusable.
func InvalidToken(w http.ResponseWriter, message string) {
	Error(w, "INVALID_TOKEN", message, http.StatusBadRequest)
}

// Forbidden sends a 403 Forbidden error.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, "FORBIDDEN", message, http.StatusForbidden)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, "CONFLICT", message, http.StatusConflict)
}

// BadGateway sends a 502 error for failed upstream dependencies.
func BadGateway(w http.ResponseWriter, message string) {
	Error(w, "UPSTREAM_UNAVAILABLE", message, http.StatusBadGateway)
}

// InternalError sends a 500 Internal Server Error.
// The error is logged server-side; the client only gets a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "internal server error",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err)
	}

	Error(w, "INTERNAL_ERROR", "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	write(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Validation errors (400)
	case errors.Is(err, domain.ErrTitleRequired):
		ValidationError(w, "title", "required field missing")
	case errors.Is(err, domain.ErrTitleTooLong):
		ValidationError(w, "title", "must be 255 characters or less")
	case errors.Is(err, domain.ErrContentsRequired):
		ValidationError(w, "contents", "required field missing")
	case errors.Is(err, domain.ErrInvalidID):
		ValidationError(w, "id", "invalid ID format")
	case errors.Is(err, domain.ErrInvalidPage):
		ValidationError(w, "page", "must be greater than or equal to 1")
	case errors.Is(err, domain.ErrInvalidPageSize):
		ValidationError(w, "size", err.Error())
	case errors.Is(err, domain.ErrInvalidDateFormat):
		ValidationError(w, "date", err.Error())
	case errors.Is(err, domain.ErrInvalidEmail):
		ValidationError(w, "email", "invalid email address")
	case errors.Is(err, domain.ErrNicknameRequired):
		ValidationError(w, "nickname", "required field missing")
	case errors.Is(err, domain.ErrInvalidUserRole):
		ValidationError(w, "userRole", "must be USER or ADMIN")
	case errors.Is(err, domain.ErrWeakPassword):
		ValidationError(w, "newPassword", domain.ErrWeakPassword.Error())
	case errors.Is(err, domain.ErrSamePassword):
		ValidationError(w, "newPassword", domain.ErrSamePassword.Error())
	case errors.Is(err, domain.ErrSelfAssignment):
		ValidationError(w, "managerUserId", domain.ErrSelfAssignment.Error())
	case errors.Is(err, domain.ErrInvalidImage):
		ValidationError(w, "image", domain.ErrInvalidImage.Error())
	case errors.Is(err, domain.ErrFilenameRequired):
		ValidationError(w, "filename", "required parameter missing")

	// Not found errors (404)
	case errors.Is(err, domain.ErrTodoNotFound):
		NotFound(w, "todo")
	case errors.Is(err, domain.ErrUserNotFound):
		NotFound(w, "user")
	case errors.Is(err, domain.ErrManagerNotFound):
		NotFound(w, "manager")
	case errors.Is(err, domain.ErrProfileImageNotFound):
		NotFound(w, "profile image")
	case errors.Is(err, domain.ErrNotFound):
		NotFound(w, "resource")

	// Auth errors (401, 400, 403)
	case errors.Is(err, domain.ErrInvalidCredentials):
		Unauthorized(w, domain.ErrInvalidCredentials.Error())
	case errors.Is(err, domain.ErrTokenExpired):
		Unauthorized(w, "token expired")
	case errors.Is(err, domain.ErrTokenMalformed):
		Unauthorized(w, "invalid token signature")
	case errors.Is(err, domain.ErrTokenUnsupported):
		InvalidToken(w, "unsupported token")
	case errors.Is(err, domain.ErrUnauthorized):
		Unauthorized(w, "authentication required")
	case errors.Is(err, domain.ErrNotTodoOwner):
		Forbidden(w, domain.ErrNotTodoOwner.Error())
	case errors.Is(err, domain.ErrForbidden):
		Forbidden(w, "insufficient role")

	// Conflict errors (409)
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		Conflict(w, domain.ErrEmailAlreadyExists.Error())
	case errors.Is(err, domain.ErrManagerAlreadyAssigned):
		Conflict(w, domain.ErrManagerAlreadyAssigned.Error())

	// Upstream errors (502)
	case errors.Is(err, domain.ErrWeatherUnavailable):
		BadGateway(w, "weather service unavailable")

	// Unknown errors (500) - Log server-side, return generic message to client
	default:
		InternalError(w, r, err)
	}
}
