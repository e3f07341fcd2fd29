package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/port"
)

// ============================================================
// GoTrue auth: sessions are owned by the hosted auth service
// ============================================================

func (c *Client) authURL(path string, query url.Values) string {
	u := fmt.Sprintf("%s/auth/v1/%s", c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SignInWithPassword")
	defer span.End()

	var body []byte
	err := c.write(ctx, "auth", func() error {
		_, b, err := c.send(ctx, http.MethodPost,
			c.authURL("token", url.Values{"grant_type": {"password"}}),
			map[string]string{"email": email, "password": password}, nil)
		body = b
		return err
	})
	if err != nil {
		var validation *domain.ErrValidation
		if errors.As(err, &validation) {
			return nil, &domain.ErrUnauthorized{Message: validation.Message}
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// SignOut revokes the session behind accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SignOut")
	defer span.End()

	ctx = port.WithAccessToken(ctx, accessToken)
	return c.write(ctx, "auth", func() error {
		_, _, err := c.send(ctx, http.MethodPost, c.authURL("logout", nil), nil, nil)
		return err
	})
}

// GetUser resolves the user behind accessToken.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*domain.AuthUser, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUser")
	defer span.End()

	ctx = port.WithAccessToken(ctx, accessToken)
	var body []byte
	err := c.read(ctx, "auth", func() error {
		_, b, err := c.send(ctx, http.MethodGet, c.authURL("user", nil), nil, nil)
		body = b
		return err
	})
	if err != nil {
		return nil, err
	}

	var user domain.AuthUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// UpdatePassword sets a new password for the user behind accessToken.
func (c *Client) UpdatePassword(ctx context.Context, accessToken, password string) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdatePassword")
	defer span.End()

	ctx = port.WithAccessToken(ctx, accessToken)
	return c.write(ctx, "auth", func() error {
		_, _, err := c.send(ctx, http.MethodPut, c.authURL("user", nil),
			map[string]string{"password": password}, nil)
		return err
	})
}

// ResetPasswordForEmail sends a recovery link that lands on redirectTo.
func (c *Client) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	ctx, span := tracer.Start(ctx, "Supabase.ResetPasswordForEmail")
	defer span.End()

	var query url.Values
	if redirectTo != "" {
		query = url.Values{"redirect_to": {redirectTo}}
	}
	return c.write(ctx, "auth", func() error {
		_, _, err := c.send(ctx, http.MethodPost, c.authURL("recover", query),
			map[string]string{"email": email}, nil)
		return err
	})
}
