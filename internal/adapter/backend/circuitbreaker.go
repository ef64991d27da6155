package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"textkit/internal/domain"
	"textkit/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultCBMaxFailures uint32        = 5
	defaultCBTimeout     time.Duration = 30 * time.Second
	defaultCBInterval    time.Duration = 60 * time.Second
)

// CircuitBreaker wraps a TextBackend with circuit breaker protection.
// After MaxFailures consecutive backend failures the circuit opens and calls
// fail fast with domain.ErrCircuitOpen until the timeout allows a probe.
// Cancelled requests are neither failures nor successes.
type CircuitBreaker struct {
	inner   domain.TextBackend
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewCircuitBreaker wraps inner with a circuit breaker.
// Zero-valued settings fall back to defaults.
func NewCircuitBreaker(inner domain.TextBackend, cfg config.CircuitBreakerConfig, logger *slog.Logger) *CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultCBMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultCBTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultCBInterval
	}

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1, // one probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
		IsExcluded: isCancellation,
	})

	return &CircuitBreaker{
		inner:   inner,
		breaker: cb,
		logger:  logger,
	}
}

// Modify implements domain.TextBackend.
func (c *CircuitBreaker) Modify(ctx context.Context, req domain.ModifyRequest) (*domain.ModifyResponse, error) {
	var resp *domain.ModifyResponse
	err := c.execute(func() error {
		var err error
		resp, err = c.inner.Modify(ctx, req)
		return err
	})
	return resp, err
}

// Translate implements domain.TextBackend.
func (c *CircuitBreaker) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.TranslateResponse, error) {
	var resp *domain.TranslateResponse
	err := c.execute(func() error {
		var err error
		resp, err = c.inner.Translate(ctx, req)
		return err
	})
	return resp, err
}

// execute runs fn through the breaker. Both operations share one breaker
// because they hit the same backend.
func (c *CircuitBreaker) execute(fn func() error) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", domain.ErrCircuitOpen, err)
	}
	return err
}

// State returns the current circuit breaker state for monitoring.
func (c *CircuitBreaker) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the current circuit breaker failure/success counts.
func (c *CircuitBreaker) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

var _ domain.TextBackend = (*CircuitBreaker)(nil)

// New builds the backend used by the tools: the HTTP client, wrapped in a
// circuit breaker when enabled.
func New(cfg config.BackendConfig, logger *slog.Logger) domain.TextBackend {
	client := NewClient(cfg, logger)
	if !cfg.CircuitBreaker.Enabled {
		return client
	}
	return NewCircuitBreaker(client, cfg.CircuitBreaker, logger)
}
