package config

import (
	"fmt"
	"time"

	"github.com/expertteam/expert/internal/env"
	"github.com/expertteam/expert/internal/infrastructure/credential"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	Auth            AuthConfig
	Todo            TodoConfig
	Storage         StorageConfig
	Weather         WeatherConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"EXPERT_SHUTDOWN_TIMEOUT"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"EXPERT_HTTP_HOST"`
	Port              string        `env:"EXPERT_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"EXPERT_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"EXPERT_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"EXPERT_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"EXPERT_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"EXPERT_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"EXPERT_HTTP_MAX_BODY_BYTES"`
	MaxUploadBytes    int64         `env:"EXPERT_HTTP_MAX_UPLOAD_BYTES"`
	AllowedOrigins    []string      `env:"EXPERT_HTTP_ALLOWED_ORIGINS"`
}

// ErrJWTSecretRequired is returned when no signing secret is configured.
var ErrJWTSecretRequired = fmt.Errorf("EXPERT_JWT_SECRET is required")

// AuthConfig holds token and authenticator configuration.
type AuthConfig struct {
	// JWTSecret is base64 or raw text; either form must yield at least 32 bytes.
	JWTSecret        string        `env:"EXPERT_JWT_SECRET,file"`
	TokenTTL         time.Duration `env:"EXPERT_JWT_TTL"`
	BcryptCost       int           `env:"EXPERT_BCRYPT_COST"`
	OperationTimeout time.Duration `env:"EXPERT_AUTH_OPERATION_TIMEOUT"`
	UpdateQueueSize  int           `env:"EXPERT_AUTH_UPDATE_QUEUE_SIZE"`
}

// Validate checks that the secret decodes to a usable HMAC key.
func (c *AuthConfig) Validate() error {
	if c.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	if _, err := credential.DecodeSecret(c.JWTSecret); err != nil {
		return fmt.Errorf("EXPERT_JWT_SECRET: %w", err)
	}
	return nil
}

// Secret returns the decoded signing key. Validate must have passed.
func (c *AuthConfig) Secret() []byte {
	b, _ := credential.DecodeSecret(c.JWTSecret)
	return b
}

// TodoConfig holds todo service configuration.
type TodoConfig struct {
	DefaultPageSize int `env:"EXPERT_DEFAULT_PAGE_SIZE"`
	MaxPageSize     int `env:"EXPERT_MAX_PAGE_SIZE"`
}

// Validate rejects a default page size above the maximum when both are set.
func (c *TodoConfig) Validate() error {
	if c.DefaultPageSize > 0 && c.MaxPageSize > 0 && c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("EXPERT_MAX_PAGE_SIZE (%d) must be >= EXPERT_DEFAULT_PAGE_SIZE (%d)", c.MaxPageSize, c.DefaultPageSize)
	}
	return nil
}

// WeatherConfig holds the upstream weather provider configuration.
type WeatherConfig struct {
	URL               string        `env:"EXPERT_WEATHER_URL"`
	Timeout           time.Duration `env:"EXPERT_WEATHER_TIMEOUT"`
	MaxFailures       int           `env:"EXPERT_WEATHER_MAX_FAILURES"`
	BreakerTimeout    time.Duration `env:"EXPERT_WEATHER_BREAKER_TIMEOUT"`
	RequestsPerSecond float64       `env:"EXPERT_WEATHER_RPS"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"EXPERT_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
	LogLevel    string `env:"EXPERT_LOG_LEVEL"`
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
