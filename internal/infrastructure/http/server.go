package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/expertteam/expert/internal/domain"
	"github.com/expertteam/expert/internal/infrastructure/http/handler"
	mw "github.com/expertteam/expert/internal/infrastructure/http/middleware"
	"github.com/expertteam/expert/internal/infrastructure/http/response"
)

// Default configuration values for the HTTP server.
const (
	DefaultHost              = ""     // Empty means all interfaces (0.0.0.0)
	DefaultPort              = "8081"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1MB
	DefaultMaxBodyBytes      = 1 << 20 // 1MB
	DefaultMaxUploadBytes    = 5 << 20 // 5MB
	DefaultHealthTimeout     = 2 * time.Second
)

// ServerConfig holds configuration for the HTTP server and router.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
	MaxUploadBytes    int64    // body limit for the multipart profile image upload
	AllowedOrigins    []string // CORS origins; empty disables CORS handling
}

// applyDefaults sets default values for any unset (zero) fields.
func (cfg *ServerConfig) applyDefaults() {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the router needs.
type Deps struct {
	Handlers *handler.Handler
	Tokens   mw.TokenValidator
	DB       Pinger

	// Files serves signed URLs of the filesystem object store. It is mounted
	// under /files when set.
	Files http.Handler
}

// APIServer wraps the HTTP server with router and all HTTP concerns.
type APIServer struct {
	server *http.Server
}

// NewAPIServer creates a new HTTP server with router, middleware, and all HTTP concerns configured.
// Applies defaults for zero or invalid config values.
func NewAPIServer(deps Deps, cfg ServerConfig) *APIServer {
	cfg.applyDefaults()

	router := setupRouter(deps, cfg)
	httpServer := setupHTTPServer(otelhttp.NewHandler(router, "expert.http"), cfg)

	return &APIServer{
		server: httpServer,
	}
}

// setupRouter creates and configures the Chi router with all middleware and routes.
func setupRouter(deps Deps, cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(nil))
	r.Use(middleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", healthHandler(deps.DB))

	if deps.Files != nil {
		r.With(mw.MaxBodyBytes(cfg.MaxUploadBytes)).Mount("/files", http.StripPrefix("/files", deps.Files))
	}

	h := deps.Handlers
	smallBody := mw.MaxBodyBytes(cfg.MaxBodyBytes)

	r.Route("/auth", func(r chi.Router) {
		r.Use(smallBody)
		r.Post("/signup", h.Signup)
		r.Post("/signin", h.Signin)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.NewAuth(deps.Tokens).Validate)

		r.Route("/todos", func(r chi.Router) {
			r.Use(smallBody)
			r.Post("/", h.CreateTodo)
			r.Get("/", h.ListTodos)
			r.Get("/search", h.SearchTodos)
			r.Route("/{todoId}", func(r chi.Router) {
				r.Get("/", h.GetTodo)
				r.Post("/managers", h.AssignManager)
				r.Get("/managers", h.ListManagers)
				r.Delete("/managers/{managerId}", h.RemoveManager)
				r.Post("/comments", h.AddComment)
				r.Get("/comments", h.ListComments)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(mw.MaxBodyBytes(cfg.MaxUploadBytes)).Post("/profile-image", h.UploadProfileImage)

			r.Group(func(r chi.Router) {
				r.Use(smallBody)
				r.Put("/", h.ChangePassword)
				r.Get("/search", h.SearchUsers)
				r.Get("/profile-image", h.GetProfileImage)
				r.Post("/profile-image/presigned-url", h.PresignProfileImage)
				r.Get("/{userId}", h.GetUser)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(smallBody)
			r.Use(mw.RequireRole(domain.UserRoleAdmin))
			r.Patch("/users/{userId}", h.ChangeRole)
			r.Get("/todos/{todoId}/manager-logs", h.ManagerLogs)
		})
	})

	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// healthHandler answers 200 while the database responds to a ping and 503 otherwise.
func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), DefaultHealthTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				slog.WarnContext(r.Context(), "health check: database ping failed", "error", err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				if encErr := json.NewEncoder(w).Encode(healthResponse{
					Status:    "unavailable",
					Message:   "database unreachable",
					Timestamp: time.Now().UTC(),
				}); encErr != nil {
					slog.ErrorContext(r.Context(), "failed to write health check response", "error", encErr)
				}
				return
			}
		}

		response.OK(w, healthResponse{
			Status:    "ok",
			Message:   "server is running",
			Timestamp: time.Now().UTC(),
		})
	}
}

// setupHTTPServer creates the net/http.Server with the given handler and config.
func setupHTTPServer(h http.Handler, cfg ServerConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// Start starts the HTTP server.
func (s *APIServer) Start() error {
	slog.Info("Starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
// The provided context controls the timeout for outstanding requests.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler for testing purposes.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
