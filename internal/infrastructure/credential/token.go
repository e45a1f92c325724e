// Package credential issues and verifies bearer tokens and hashes passwords.
package credential

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/expertteam/expert/internal/domain"
)

// MinSecretLength is the minimum HMAC secret size in bytes.
const MinSecretLength = 32

// DefaultTokenTTL is the validity of issued tokens when none is configured.
const DefaultTokenTTL = 60 * time.Minute

// ErrSecretTooShort is returned for signing secrets below MinSecretLength.
var ErrSecretTooShort = fmt.Errorf("token secret must be at least %d bytes", MinSecretLength)

// DecodeSecret accepts a standard base64 secret or, failing that, the raw string.
func DecodeSecret(s string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil && len(decoded) >= MinSecretLength {
		return decoded, nil
	}
	if len(s) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	return []byte(s), nil
}

type claims struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"userRole"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 tokens.
type JWTManager struct {
	secret []byte
	keyID  string
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a JWTManager.
type Option func(*JWTManager)

// WithClock overrides the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(m *JWTManager) { m.now = now }
}

// NewJWTManager creates a token manager. A zero ttl uses DefaultTokenTTL.
func NewJWTManager(secret []byte, ttl time.Duration, opts ...Option) (*JWTManager, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	// kid is a short BLAKE2b fingerprint of the secret so rotated keys can be told apart in logs.
	sum := blake2b.Sum256(secret)

	m := &JWTManager{
		secret: secret,
		keyID:  hex.EncodeToString(sum[:4]),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// KeyID returns the fingerprint placed in the kid header of issued tokens.
func (m *JWTManager) KeyID() string {
	return m.keyID
}

// Issue creates a signed token for user.
func (m *JWTManager) Issue(user *domain.User) (string, error) {
	now := m.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:    user.Email,
		Nickname: user.Nickname,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	token.Header["kid"] = m.keyID

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies token and returns the identity it carries.
func (m *JWTManager) Parse(token string) (*domain.AuthUser, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, m.key,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenUnsupported)
	}
	role, err := domain.NewUserRole(c.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenUnsupported, err)
	}

	return &domain.AuthUser{
		ID:       c.Subject,
		Email:    c.Email,
		Nickname: c.Nickname,
		Role:     role,
	}, nil
}

func (m *JWTManager) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: signing method %v", domain.ErrTokenUnsupported, t.Header["alg"])
	}
	return m.secret, nil
}

// classify maps jwt parse failures onto domain token errors.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrTokenUnsupported):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %w", domain.ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrTokenUnsupported, err)
	}
}
