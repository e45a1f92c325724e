package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/expertteam/expert/internal/application/audit"
	"github.com/expertteam/expert/internal/application/auth"
	"github.com/expertteam/expert/internal/application/comment"
	"github.com/expertteam/expert/internal/application/manager"
	"github.com/expertteam/expert/internal/application/todo"
	"github.com/expertteam/expert/internal/application/user"
	"github.com/expertteam/expert/internal/config"
	"github.com/expertteam/expert/internal/infrastructure/credential"
	httpserver "github.com/expertteam/expert/internal/infrastructure/http"
	"github.com/expertteam/expert/internal/infrastructure/http/handler"
	"github.com/expertteam/expert/internal/infrastructure/observability"
	"github.com/expertteam/expert/internal/infrastructure/persistence/postgres"
	"github.com/expertteam/expert/internal/infrastructure/storage/fs"
	"github.com/expertteam/expert/internal/infrastructure/storage/gcs"
	"github.com/expertteam/expert/internal/infrastructure/weather"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	// Root context for normal operation, cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	obsCfg := observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
		LogLevel:    parseLogLevel(cfg.Observability.LogLevel),
	}

	tel, err := observability.Setup(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer shutdownTelemetry(tel)
	slog.SetDefault(tel.Logger)

	store, err := postgres.NewStoreWithConfig(ctx, postgres.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	slog.InfoContext(ctx, "storage initialized", "dsn", maskPassword(cfg.Database.DSN))

	images, files, err := newObjectStore(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return err
	}

	tokens, err := credential.NewJWTManager(cfg.Auth.Secret(), cfg.Auth.TokenTTL)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to create token manager: %w", err)
	}
	slog.InfoContext(ctx, "token signing configured", "kid", tokens.KeyID())
	passwords := credential.NewBcryptHasher(cfg.Auth.BcryptCost)

	authenticator := auth.NewAuthenticator(ctx, store, tokens, passwords, auth.Config{
		OperationTimeout: cfg.Auth.OperationTimeout,
		UpdateQueueSize:  cfg.Auth.UpdateQueueSize,
	})

	weatherClient := weather.NewClient(weather.Config{
		URL:               cfg.Weather.URL,
		Timeout:           cfg.Weather.Timeout,
		MaxFailures:       cfg.Weather.MaxFailures,
		BreakerTimeout:    cfg.Weather.BreakerTimeout,
		RequestsPerSecond: cfg.Weather.RequestsPerSecond,
	})

	recorder := audit.NewRecorder(store)
	handlers := handler.New(handler.Services{
		Auth: authenticator,
		Todos: todo.NewService(store, weatherClient, todo.Config{
			DefaultPageSize: cfg.Todo.DefaultPageSize,
			MaxPageSize:     cfg.Todo.MaxPageSize,
		}),
		Managers: manager.NewService(store, recorder),
		Audit:    recorder,
		Comments: comment.NewService(store),
		Users: user.NewService(store, passwords, images, user.Config{
			UploadURLExpiry:   cfg.Storage.UploadURLExpiry,
			DownloadURLExpiry: cfg.Storage.DownloadURLExpiry,
		}),
	})

	server := httpserver.NewAPIServer(httpserver.Deps{
		Handlers: handlers,
		Tokens:   authenticator,
		DB:       store,
		Files:    files,
	}, httpserver.ServerConfig{
		Host:              cfg.HTTP.Host,
		Port:              cfg.HTTP.Port,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		MaxUploadBytes:    cfg.HTTP.MaxUploadBytes,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
	})

	errResult := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}

	var closers []io.Closer
	if c, ok := images.(io.Closer); ok {
		closers = append(closers, c)
	}
	closers = append(closers, store)

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
	case err := <-errResult:
		slog.ErrorContext(ctx, "server stopped", "error", err)
		cleanupCtx, cancelCleanup := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelCleanup()
		newCleanup(cleanupCtx, authenticator, closers...)()
		return err
	}

	// The root context is already cancelled; shutdown gets a fresh window.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.WarnContext(shutdownCtx, "HTTP server shutdown incomplete", "error", err)
	}
	newCleanup(shutdownCtx, authenticator, closers...)()

	return nil
}

// newObjectStore builds the profile image store. For the filesystem backend it also
// returns the handler serving its signed URLs.
func newObjectStore(ctx context.Context, cfg *config.ServerConfig) (user.ObjectStore, http.Handler, error) {
	switch cfg.Storage.Type {
	case config.StorageGCS:
		s, err := gcs.NewStore(ctx, gcs.Config{
			Bucket:          cfg.Storage.GCSBucket,
			CredentialsFile: cfg.Storage.GCSCredentialsFile,
			Endpoint:        cfg.Storage.GCSEndpoint,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gcs store: %w", err)
		}
		slog.InfoContext(ctx, "object storage initialized", "type", "gcs", "bucket", cfg.Storage.GCSBucket)
		return s, nil, nil
	default:
		s, err := fs.NewStore(cfg.Storage.FSDir, cfg.Storage.PublicURL+"/files", cfg.Auth.Secret())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create fs store: %w", err)
		}
		slog.InfoContext(ctx, "object storage initialized", "type", "fs", "dir", cfg.Storage.FSDir)
		return s, s.Handler(), nil
	}
}

// shutdownTelemetry flushes telemetry without hanging on an unreachable collector.
func shutdownTelemetry(tel *observability.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown telemetry", "error", err)
	}
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// maskPassword masks the password in a connection string for logging.
func maskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
