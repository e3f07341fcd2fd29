// Package supabase provides a client for Supabase (PostgREST, GoTrue auth,
// Storage and Edge Functions). It is the storefront's only data backend.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/resilience"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

// Client wraps HTTP calls to the Supabase APIs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client. serviceRoleKey may be empty; it is only
// needed by the direct invite adapter.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		cfg:            cfg,
		logger:         logger,
	}
}

// BreakerSuccess reports outcomes that describe the request rather than the
// backend's health, so rejections (4xx) never trip the circuit breaker.
func BreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return apiErr.Status < 500 && apiErr.Status != http.StatusTooManyRequests
	}
	return false
}

func isDomainRejection(err error) bool {
	var (
		notFound     *domain.ErrNotFound
		forbidden    *domain.ErrForbidden
		unauthorized *domain.ErrUnauthorized
		conflict     *domain.ErrConflict
		validation   *domain.ErrValidation
	)
	return errors.As(err, &notFound) || errors.As(err, &forbidden) || errors.As(err, &unauthorized) ||
		errors.As(err, &conflict) || errors.As(err, &validation)
}

// bearer is the caller token from ctx, or the anon key for public reads.
func (c *Client) bearer(ctx context.Context) string {
	if t := port.AccessToken(ctx); t != "" {
		return t
	}
	return c.apiKey
}

// ============================================================
// Transport
// ============================================================

// apiError is a non-2xx response from any Supabase API.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("supabase returned status %d: %s", e.Status, e.Body)
}

// send performs one HTTP exchange and returns the status and body.
func (c *Client) send(ctx context.Context, method, url string, payload any, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, resilience.Permanent(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return 0, nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return resp.StatusCode, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		apiErr := &apiError{Status: resp.StatusCode, Body: string(body)}
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp.StatusCode, body, resilience.Permanent(apiErr)
		}
		return resp.StatusCode, body, apiErr
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
	)
	return resp.StatusCode, body, nil
}

// read runs an idempotent call through the circuit breaker with retries.
func (c *Client) read(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return c.translate(ctx, service, err)
}

// write runs a mutating call through the circuit breaker exactly once.
func (c *Client) write(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return c.translate(ctx, service, err)
}

// translate maps transport failures to domain errors.
func (c *Client) translate(ctx context.Context, service string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "supabase"}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.ErrTimeout{Operation: service}
	}
	if isDomainRejection(err) {
		return err
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return &domain.ErrUnauthorized{Message: "session expired or invalid"}
		case http.StatusForbidden:
			return &domain.ErrForbidden{Action: service, Reason: "denied by row-level security"}
		case http.StatusNotFound:
			return &domain.ErrNotFound{Resource: service, ID: backendMessage(apiErr.Body)}
		case http.StatusConflict:
			return &domain.ErrConflict{Message: fmt.Sprintf("%s: resource already exists", service)}
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &domain.ErrValidation{Field: service, Message: backendMessage(apiErr.Body)}
		}
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

// backendMessage extracts the human-readable message from a Supabase error body.
func backendMessage(body string) string {
	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		for _, m := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return body
}

// Ping checks that the auth API answers. Used by /readyz.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	_, _, err := c.send(ctx, http.MethodGet, c.baseURL+"/auth/v1/health", nil, nil)
	return c.translate(ctx, "health", err)
}
