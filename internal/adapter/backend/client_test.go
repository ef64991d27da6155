package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textkit/internal/domain"
	"textkit/internal/infra/config"
)

func testConfig(baseURL string) config.BackendConfig {
	cfg := config.Defaults().Backend
	cfg.BaseURL = baseURL
	cfg.RateLimit = config.RateLimitConfig{}
	return cfg
}

func TestModifyRequestShape(t *testing.T) {
	var (
		gotMethod, gotPath, gotCT, gotAuth string
		gotBody                            map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"correctedText":"The dog runs."}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/")
	cfg.APIKey = "sk-test"
	c := NewClient(cfg, slog.Default())

	resp, err := c.Modify(context.Background(), domain.ModifyRequest{
		Type: domain.StyleFix, Text: "teh dog run", Model: "gemma-3-27b-it",
	})
	require.NoError(t, err)
	assert.Equal(t, "The dog runs.", resp.CorrectedText)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/text/modify", gotPath)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, map[string]string{"type": "fix", "text": "teh dog run", "model": "gemma-3-27b-it"}, gotBody)
}

func TestTranslateConfigurablePath(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{"translatedText":"Привет, мир","detectedLanguage":"French"}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TranslatePath = "/api/translate"
	c := NewClient(cfg, slog.Default())

	resp, err := c.Translate(context.Background(), domain.TranslateRequest{
		Text: "Bonjour le monde", Model: "gemma-3-27b-it", TargetLanguage: "Russian",
	})
	require.NoError(t, err)
	assert.Equal(t, "Привет, мир", resp.TranslatedText)
	assert.Equal(t, "French", resp.DetectedLanguage)
	assert.Equal(t, "/api/translate", gotPath)
	assert.Empty(t, gotAuth, "no bearer token without an api key")
	assert.Equal(t, "Russian", gotBody["targetLanguage"])
}

func TestNon2xxBecomesRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream model unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	_, err := c.Modify(context.Background(), domain.ModifyRequest{Type: domain.StyleFix, Text: "hello"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
	assert.Equal(t, http.StatusBadGateway, domain.StatusOf(err))
	assert.Equal(t, domain.CodeRequestFailed, domain.ErrorCodeOf(err))

	var re *domain.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "upstream model unavailable", re.Body)
}

func TestAny2xxIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"correctedText":"ok"}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	resp, err := c.Modify(context.Background(), domain.ModifyRequest{Text: "okay"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.CorrectedText)
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	_, err := c.Translate(context.Background(), domain.TranslateRequest{Text: "hello"})
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(testConfig(url), slog.Default())
	_, err := c.Modify(context.Background(), domain.ModifyRequest{Text: "hello"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, 0, domain.StatusOf(err))
}

func TestCancelledRequest(t *testing.T) {
	arrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Modify(ctx, domain.ModifyRequest{Text: "hello"})
		errCh <- err
	}()

	<-arrived
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrCancelled)
		assert.True(t, domain.IsCancelled(err))
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled request did not return")
	}
}

func TestRateLimitWaitReleasedByCancel(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		io.WriteString(w, `{"correctedText":"ok"}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.1, Burst: 1}
	c := NewClient(cfg, slog.Default())

	_, err := c.Modify(context.Background(), domain.ModifyRequest{Text: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	_, err = c.Modify(ctx, domain.ModifyRequest{Text: "second"})
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int32(1), hits.Load(), "throttled request should never reach the backend")
}

func TestNewWrapsWithCircuitBreaker(t *testing.T) {
	cfg := testConfig("http://localhost:8080")

	cfg.CircuitBreaker.Enabled = true
	_, ok := New(cfg, nil).(*CircuitBreaker)
	assert.True(t, ok)

	cfg.CircuitBreaker.Enabled = false
	_, ok = New(cfg, nil).(*Client)
	assert.True(t, ok)
}

func TestMapTransportError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mapTransportError(ctx, errors.New("read: connection reset")), domain.ErrCancelled)
	assert.ErrorIs(t, mapTransportError(context.Background(), errors.New("dial tcp: refused")), domain.ErrNetwork)
}
