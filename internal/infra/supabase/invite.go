package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/port"
)

// ============================================================
// Invitations
// ============================================================

// FunctionInviter delegates invitations to the invite-user edge function,
// which re-checks the caller's tier with their own token.
type FunctionInviter struct {
	client   *Client
	function string
}

// NewFunctionInviter targets the named edge function.
func NewFunctionInviter(client *Client, function string) *FunctionInviter {
	return &FunctionInviter{client: client, function: function}
}

type invitePayload struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type inviteResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	User    *struct {
		ID string `json:"id"`
	} `json:"user"`
	ID string `json:"id"`
}

func (r inviteResponse) userID() string {
	if r.User != nil {
		return r.User.ID
	}
	return r.ID
}

// Invite calls the edge function on behalf of the caller.
func (f *FunctionInviter) Invite(ctx context.Context, accessToken string, req *domain.InviteRequest) (*domain.InviteResult, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InviteViaFunction")
	defer span.End()

	c := f.client
	ctx = port.WithAccessToken(ctx, accessToken)
	endpoint := fmt.Sprintf("%s/functions/v1/%s", c.baseURL, f.function)

	var body []byte
	err := c.write(ctx, "functions", func() error {
		_, b, err := c.send(ctx, http.MethodPost, endpoint, invitePayload{
			Email: req.Email, FullName: req.FullName, Role: req.Role.String(),
		}, nil)
		body = b
		return err
	})
	if err != nil {
		return nil, err
	}

	var resp inviteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode invite response: %w", err)
	}
	if resp.Error != "" {
		return nil, &domain.ErrValidation{Field: "invite", Message: resp.Error}
	}
	return &domain.InviteResult{Message: resp.Message, UserID: resp.userID()}, nil
}

// AdminInviter calls the GoTrue admin invite endpoint directly with the
// service role key. The tier check is done by the caller.
type AdminInviter struct {
	client  *Client
	siteURL string
}

// NewAdminInviter builds the direct adapter. siteURL is where the invite link lands.
func NewAdminInviter(client *Client, siteURL string) *AdminInviter {
	return &AdminInviter{client: client, siteURL: strings.TrimRight(siteURL, "/")}
}

// Invite creates the pending user with full_name and role metadata; the
// signup trigger copies both onto the profile.
func (a *AdminInviter) Invite(ctx context.Context, _ string, req *domain.InviteRequest) (*domain.InviteResult, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InviteViaAdmin")
	defer span.End()

	c := a.client
	if c.serviceRoleKey == "" {
		return nil, &domain.ErrNotConfigured{Component: "SUPABASE_SERVICE_ROLE_KEY"}
	}
	ctx = port.WithAccessToken(ctx, c.serviceRoleKey)

	var query url.Values
	if a.siteURL != "" {
		query = url.Values{"redirect_to": {a.siteURL + "/admin"}}
	}
	payload := map[string]any{
		"email": req.Email,
		"data": map[string]string{
			"full_name": req.FullName,
			"role":      req.Role.String(),
		},
	}

	var body []byte
	err := c.write(ctx, "auth", func() error {
		_, b, err := c.send(ctx, http.MethodPost, c.authURL("invite", query), payload, nil)
		body = b
		return err
	})
	if err != nil {
		return nil, err
	}

	var resp inviteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode invite response: %w", err)
	}
	return &domain.InviteResult{Message: "invitation sent to " + req.Email, UserID: resp.userID()}, nil
}
