package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/expertteam/expert/internal/domain"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.AuthUser, error)
}

type authUserKey struct{}

// WithAuthUser returns a context carrying the authenticated user.
func WithAuthUser(ctx context.Context, user domain.AuthUser) context.Context {
	return context.WithValue(ctx, authUserKey{}, user)
}

// AuthUserFromContext returns the authenticated user stored by Auth.Validate.
func AuthUserFromContext(ctx context.Context) (domain.AuthUser, bool) {
	user, ok := ctx.Value(authUserKey{}).(domain.AuthUser)
	return user, ok
}

// Auth is HTTP middleware for bearer token authentication.
type Auth struct {
	validator TokenValidator
}

// NewAuth creates a new auth middleware.
func NewAuth(validator TokenValidator) *Auth {
	return &Auth{
		validator: validator,
	}
}

// Validate is a Chi middleware that authenticates the "Authorization: Bearer <jwt>" header
// and stores the caller in the request context.
func (a *Auth) Validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			slog.WarnContext(r.Context(), "authentication failed: missing Authorization header",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "authentication required")
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			slog.WarnContext(r.Context(), "authentication failed: invalid Authorization header format",
				"path", r.URL.Path,
				"method", r.Method)
			response.InvalidToken(w, "invalid Authorization header format, expected: Bearer <token>")
			return
		}

		user, err := a.validator.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTokenExpired),
				errors.Is(err, domain.ErrTokenMalformed),
				errors.Is(err, domain.ErrTokenUnsupported):
				slog.WarnContext(r.Context(), "authentication failed: invalid token",
					"path", r.URL.Path,
					"method", r.Method,
					"reason", err)
			default:
				slog.ErrorContext(r.Context(), "authentication failed: unexpected error",
					"path", r.URL.Path,
					"method", r.Method,
					"error", err)
			}
			response.FromDomainError(w, r, err)
			return
		}

		slog.DebugContext(r.Context(), "authentication successful",
			"path", r.URL.Path,
			"method", r.Method,
			"user_id", user.ID)

		next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), *user)))
	})
}

// RequireRole rejects authenticated callers that do not hold role.
// It must run after Auth.Validate.
func RequireRole(role domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := AuthUserFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}
			if user.Role != role {
				slog.WarnContext(r.Context(), "authorization failed: insufficient role",
					"path", r.URL.Path,
					"method", r.Method,
					"user_id", user.ID,
					"role", string(user.Role))
				response.Forbidden(w, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
