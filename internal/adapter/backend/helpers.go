package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"textkit/internal/domain"
)

// maxResponseBody is the maximum response body size read from the backend.
const maxResponseBody = 4 * 1024 * 1024 // 4 MB

// maxErrorBody bounds the body excerpt kept on a RequestError.
const maxErrorBody = 512

// doJSONRequest performs a JSON POST request and returns the response body.
// Non-2xx responses become *domain.RequestError, transport failures wrap
// domain.ErrNetwork and a cancelled context yields domain.ErrCancelled.
func doJSONRequest(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, mapTransportError(ctx, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, mapTransportError(ctx, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, mapHTTPError(httpResp.StatusCode, respBody)
	}

	return respBody, nil
}

// mapTransportError distinguishes an aborted request from a network failure.
func mapTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrCancelled, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
}

// mapHTTPError maps an HTTP status code + response body to a domain error.
func mapHTTPError(statusCode int, body []byte) error {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxErrorBody {
		excerpt = excerpt[:maxErrorBody]
	}
	return &domain.RequestError{Status: statusCode, Body: excerpt}
}

// isCancellation reports whether err came from an aborted request rather
// than a backend failure.
func isCancellation(err error) bool {
	return domain.IsCancelled(err) || errors.Is(err, context.Canceled)
}
