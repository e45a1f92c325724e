// Package weather fetches the daily weather recorded on new todos.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/expertteam/expert/internal/domain"
)

// Defaults applied when Config leaves a field unset.
const (
	DefaultTimeout        = 5 * time.Second
	DefaultMaxFailures    = 5
	DefaultBreakerTimeout = 30 * time.Second
	maxResponseBytes      = 1 << 20
	dateLayout            = "01-02"
)

// Config configures the weather client.
type Config struct {
	URL               string        // Endpoint returning the daily weather list. Empty disables lookups.
	Timeout           time.Duration // Per-request timeout (default: 5s)
	MaxFailures       int           // Consecutive failures that open the breaker (default: 5)
	BreakerTimeout    time.Duration // Time the breaker stays open (default: 30s)
	RequestsPerSecond float64       // Outbound rate limit; zero disables it
}

func (c *Config) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = DefaultMaxFailures
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = DefaultBreakerTimeout
	}
}

type entry struct {
	Date    string `json:"date"`
	Weather string `json:"weather"`
}

// Client looks up today's weather from an HTTP endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewClient creates a weather client.
func NewClient(cfg Config) *Client {
	cfg.applyDefaults()

	maxFailures := uint32(cfg.MaxFailures)
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "weather",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		limiter: limiter,
		now:     time.Now,
	}
}

// TodayWeather returns the weather for the current UTC date.
// It returns "" when no endpoint is configured and domain.ErrWeatherUnavailable
// when the endpoint fails, has no entry for today or the breaker is open.
func (c *Client) TodayWeather(ctx context.Context) (string, error) {
	if c.url == "" {
		return "", nil
	}

	weather, err := c.breaker.Execute(func() (string, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.WarnContext(ctx, "weather lookup skipped, circuit open")
		}
		return "", fmt.Errorf("%w: %w", domain.ErrWeatherUnavailable, err)
	}
	return weather, nil
}

func (c *Client) fetch(ctx context.Context) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var entries []entry
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&entries); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	today := c.now().UTC().Format(dateLayout)
	for _, e := range entries {
		if e.Date == today {
			return e.Weather, nil
		}
	}
	return "", fmt.Errorf("no weather entry for %s", today)
}
