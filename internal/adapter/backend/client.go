package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"textkit/internal/domain"
	"textkit/internal/infra/config"
	"textkit/internal/infra/tracer"
)

// Client implements domain.TextBackend over the backend's JSON HTTP API.
type Client struct {
	baseURL       string
	modifyPath    string
	translatePath string
	apiKey        string
	client        *http.Client
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// NewClient creates a backend client from cfg. A zero rate limit disables
// client-side throttling.
func NewClient(cfg config.BackendConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		modifyPath:    cfg.ModifyPath,
		translatePath: cfg.TranslatePath,
		apiKey:        cfg.APIKey,
		client:        NewHTTPClient(cfg),
		logger:        logger,
	}
	if c.modifyPath == "" {
		c.modifyPath = "/api/text/modify"
	}
	if c.translatePath == "" {
		c.translatePath = "/api/text/translate"
	}
	if rl := cfg.RateLimit; rl.RequestsPerSecond > 0 {
		burst := rl.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), burst)
	}
	return c
}

// Modify implements domain.TextBackend.
func (c *Client) Modify(ctx context.Context, req domain.ModifyRequest) (*domain.ModifyResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "backend.modify",
		trace.WithAttributes(
			tracer.StringAttr("text.style", string(req.Type)),
			tracer.StringAttr("text.model", req.Model),
			tracer.IntAttr("text.length", len(req.Text)),
		),
	)
	defer span.End()

	var resp domain.ModifyResponse
	if err := c.post(ctx, c.modifyPath, req, &resp); err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	return &resp, nil
}

// Translate implements domain.TextBackend.
func (c *Client) Translate(ctx context.Context, req domain.TranslateRequest) (*domain.TranslateResponse, error) {
	ctx, span := tracer.StartSpan(ctx, "backend.translate",
		trace.WithAttributes(
			tracer.StringAttr("text.model", req.Model),
			tracer.StringAttr("text.target_language", req.TargetLanguage),
			tracer.IntAttr("text.length", len(req.Text)),
		),
	)
	defer span.End()

	var resp domain.TranslateResponse
	if err := c.post(ctx, c.translatePath, req, &resp); err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(tracer.StringAttr("text.detected_language", resp.DetectedLanguage))
	tracer.SetOK(span)
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.apiKey}
	}

	start := time.Now()
	respBody, err := doJSONRequest(ctx, c.client, c.baseURL+path, body, headers)
	if err != nil {
		c.logger.Debug("backend request failed",
			"path", path,
			"status", domain.StatusOf(err),
			"duration", time.Since(start),
			"error", err,
		)
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrRequestFailed, err)
	}

	c.logger.Debug("backend request completed", "path", path, "duration", time.Since(start))
	return nil
}

// wait blocks on the rate limiter. A request superseded while waiting is
// released by its context.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
		}
		return fmt.Errorf("%w: rate limit: %w", domain.ErrNetwork, err)
	}
	return nil
}

var _ domain.TextBackend = (*Client)(nil)
