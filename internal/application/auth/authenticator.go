package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/expertteam/expert/internal/domain"
)

// Default configuration values.
const (
	DefaultOperationTimeout = 5 * time.Second
	DefaultUpdateQueueSize  = 1000
)

// Config holds configuration for the Authenticator.
type Config struct {
	OperationTimeout time.Duration // Timeout for storage operations
	UpdateQueueSize  int           // Buffer size for last_seen_at updates
}

// SignupInput holds the fields required to register a user.
type SignupInput struct {
	Email    string
	Password string
	Nickname string
	Role     string
}

// lastSeenUpdate holds information for updating a user's last_seen_at timestamp.
type lastSeenUpdate struct {
	userID    string
	timestamp time.Time
}

// Authenticator handles signup, signin and bearer token validation.
type Authenticator struct {
	repo             Repository
	tokens           TokenManager
	passwords        PasswordHasher
	appCtx           context.Context // Application context, cancelled on shutdown
	lastSeenUpdates  chan lastSeenUpdate
	shutdownChan     chan struct{}
	shutdownOnce     sync.Once
	wg               sync.WaitGroup
	operationTimeout time.Duration
}

// NewAuthenticator creates a new authenticator and starts the background worker
// for processing last_seen_at updates.
// The ctx parameter should be an application-level context that gets cancelled on shutdown.
// Zero OperationTimeout means no timeout; negative gets the default.
// Zero UpdateQueueSize gets the default (must be > 0 to avoid blocking).
func NewAuthenticator(ctx context.Context, repo Repository, tokens TokenManager, passwords PasswordHasher, config Config) *Authenticator {
	if config.OperationTimeout < 0 {
		config.OperationTimeout = DefaultOperationTimeout
	}
	if config.UpdateQueueSize <= 0 {
		config.UpdateQueueSize = DefaultUpdateQueueSize
	}

	a := &Authenticator{
		repo:             repo,
		tokens:           tokens,
		passwords:        passwords,
		appCtx:           ctx,
		lastSeenUpdates:  make(chan lastSeenUpdate, config.UpdateQueueSize),
		shutdownChan:     make(chan struct{}),
		operationTimeout: config.OperationTimeout,
	}

	a.wg.Add(1)
	go a.processLastSeenUpdates()

	return a
}

// withTimeout derives an operation context. A zero timeout means no deadline.
func (a *Authenticator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.operationTimeout == 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.operationTimeout)
}

// processLastSeenUpdates drains the update queue until shutdown.
func (a *Authenticator) processLastSeenUpdates() {
	defer a.wg.Done()

	for {
		select {
		case update := <-a.lastSeenUpdates:
			// cancel is called per iteration; defer would hold every context until exit.
			ctx, cancel := a.withTimeout(a.appCtx)
			if err := a.repo.UpdateLastSeen(ctx, update.userID, update.timestamp); err != nil {
				slog.WarnContext(ctx, "Failed to update user last_seen_at",
					slog.String("user_id", update.userID),
					slog.String("error", err.Error()))
			}
			cancel()

		case <-a.shutdownChan:
			for {
				select {
				case update := <-a.lastSeenUpdates:
					// appCtx is already cancelled during shutdown.
					ctx, cancel := a.withTimeout(context.Background())
					_ = a.repo.UpdateLastSeen(ctx, update.userID, update.timestamp)
					cancel()
				default:
					return
				}
			}
		}
	}
}

// Shutdown signals the worker to stop and waits for it to drain pending updates.
// It respects the provided context's deadline and is safe to call multiple times.
func (a *Authenticator) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.shutdownOnce.Do(func() {
		close(a.shutdownChan)

		done := make(chan struct{})
		go func() {
			a.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			shutdownErr = fmt.Errorf("shutdown timeout: %w", ctx.Err())
		}
	})
	return shutdownErr
}

// Signup registers a new user and returns a bearer token for it.
func (a *Authenticator) Signup(ctx context.Context, input SignupInput) (string, error) {
	email, err := domain.NewEmail(input.Email)
	if err != nil {
		return "", err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return "", err
	}
	nickname := strings.TrimSpace(input.Nickname)
	if nickname == "" {
		return "", domain.ErrNicknameRequired
	}
	role, err := domain.NewUserRole(input.Role)
	if err != nil {
		return "", err
	}

	hash, err := a.passwords.Hash(input.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           idObj.String(),
		Email:        email.String(),
		PasswordHash: hash,
		Nickname:     nickname,
		Role:         role,
		CreatedAt:    now,
		ModifiedAt:   now,
	}

	opCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.repo.CreateUser(opCtx, user); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"role", string(user.Role))

	return a.tokens.Issue(user)
}

// Signin verifies credentials and returns a bearer token.
// Returns domain.ErrInvalidCredentials for an unknown email or a wrong password.
func (a *Authenticator) Signin(ctx context.Context, emailStr, password string) (string, error) {
	email, err := domain.NewEmail(emailStr)
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}

	opCtx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.repo.FindUserByEmail(opCtx, email.String())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := a.passwords.Compare(user.PasswordHash, password); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return a.tokens.Issue(user)
}

// ValidateToken verifies a bearer token and returns the authenticated identity.
// The token error kinds from TokenManager are returned unchanged so transports
// can map them to distinct responses.
func (a *Authenticator) ValidateToken(ctx context.Context, token string) (*domain.AuthUser, error) {
	user, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	// Non-blocking: last_seen_at is non-critical and a full queue drops the update.
	select {
	case a.lastSeenUpdates <- lastSeenUpdate{
		userID:    user.ID,
		timestamp: time.Now().UTC(),
	}:
	default:
		slog.WarnContext(ctx, "Dropped last_seen_at update due to full queue",
			slog.String("user_id", user.ID))
	}

	return user, nil
}
