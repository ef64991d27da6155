package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textkit/internal/domain"
	"textkit/internal/infra/config"
)

type stubBackend struct {
	calls atomic.Int32
	err   atomic.Pointer[error]
}

func (s *stubBackend) fail(err error) { s.err.Store(&err) }

func (s *stubBackend) result() error {
	s.calls.Add(1)
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *stubBackend) Modify(_ context.Context, req domain.ModifyRequest) (*domain.ModifyResponse, error) {
	if err := s.result(); err != nil {
		return nil, err
	}
	return &domain.ModifyResponse{CorrectedText: req.Text}, nil
}

func (s *stubBackend) Translate(_ context.Context, req domain.TranslateRequest) (*domain.TranslateResponse, error) {
	if err := s.result(); err != nil {
		return nil, err
	}
	return &domain.TranslateResponse{TranslatedText: req.Text, DetectedLanguage: "English"}, nil
}

func TestCircuitBreakerPassesThrough(t *testing.T) {
	inner := &stubBackend{}
	cb := NewCircuitBreaker(inner, config.CircuitBreakerConfig{}, slog.Default())

	resp, err := cb.Modify(context.Background(), domain.ModifyRequest{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.CorrectedText)

	tr, err := cb.Translate(context.Background(), domain.TranslateRequest{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "English", tr.DetectedLanguage)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	inner := &stubBackend{}
	inner.fail(&domain.RequestError{Status: 500})

	cb := NewCircuitBreaker(inner, config.CircuitBreakerConfig{
		MaxFailures: 3,
		Timeout:     5 * time.Second,
		Interval:    60 * time.Second,
	}, slog.Default())

	for i := 0; i < 3; i++ {
		_, err := cb.Modify(context.Background(), domain.ModifyRequest{})
		require.Error(t, err)
		assert.Equal(t, 500, domain.StatusOf(err))
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Translate(context.Background(), domain.TranslateRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCircuitOpen)
	assert.Equal(t, domain.CodeCircuitOpen, domain.ErrorCodeOf(err))
	assert.Equal(t, int32(3), inner.calls.Load(), "backend must not be called while the circuit is open")
}

func TestCircuitBreakerIgnoresCancellations(t *testing.T) {
	inner := &stubBackend{}
	cb := NewCircuitBreaker(inner, config.CircuitBreakerConfig{MaxFailures: 3}, slog.Default())

	inner.fail(domain.ErrNetwork)
	for i := 0; i < 2; i++ {
		_, _ = cb.Modify(context.Background(), domain.ModifyRequest{})
	}

	inner.fail(fmt.Errorf("%w: %w", domain.ErrCancelled, context.Canceled))
	for i := 0; i < 10; i++ {
		_, err := cb.Modify(context.Background(), domain.ModifyRequest{})
		assert.True(t, domain.IsCancelled(err))
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Equal(t, uint32(2), cb.Counts().ConsecutiveFailures)
}

func TestCircuitBreakerRecoversAfterTimeout(t *testing.T) {
	inner := &stubBackend{}
	inner.fail(errors.New("boom"))

	cb := NewCircuitBreaker(inner, config.CircuitBreakerConfig{
		MaxFailures: 1,
		Timeout:     50 * time.Millisecond,
	}, slog.Default())

	_, err := cb.Modify(context.Background(), domain.ModifyRequest{})
	require.Error(t, err)
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(80 * time.Millisecond)
	inner.err.Store(nil)

	resp, err := cb.Modify(context.Background(), domain.ModifyRequest{Text: "probe"})
	require.NoError(t, err)
	assert.Equal(t, "probe", resp.CorrectedText)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
