package supabase

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Ads
// ============================================================

func (c *Client) ListAds(ctx context.Context, activeOnly bool, limit int) ([]domain.Ad, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAds")
	defer span.End()

	q := url.Values{
		"select": {"*"},
		"order":  {"position.asc"},
	}
	if activeOnly {
		q.Set("is_active", eq("true"))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.doRequest(ctx, "ads", q)
	if err != nil {
		return nil, err
	}
	return decodeRows[domain.Ad](body, "ads")
}

func adPayload(ad *domain.Ad) map[string]any {
	return map[string]any{
		"title":       ad.Title,
		"description": ad.Description,
		"image_url":   ad.ImageURL,
		"cta_link":    ad.CTALink,
		"is_active":   ad.IsActive,
		"position":    int(ad.Position),
	}
}

func (c *Client) CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAd")
	defer span.End()

	body, err := c.doPost(ctx, "ads", adPayload(ad))
	if err != nil {
		return nil, err
	}
	return decodeFirst[domain.Ad](body, "ad")
}

func (c *Client) GetAd(ctx context.Context, id string) (*domain.Ad, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAd")
	defer span.End()

	body, err := c.doRequest(ctx, "ads", url.Values{
		"select": {"*"},
		"id":     {eq(id)},
		"limit":  {"1"},
	})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[domain.Ad](body, "ad")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "ad", ID: id}
	}
	return &rows[0], nil
}

func (c *Client) UpdateAd(ctx context.Context, ad *domain.Ad) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAd")
	defer span.End()

	return c.doPatchRow(ctx, "ads", "ad", ad.ID, adPayload(ad))
}

func (c *Client) DeleteAd(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteAd")
	defer span.End()

	return c.doDelete(ctx, "ads", idFilter(id))
}

// DeactivateAdsInPosition clears the slot in a single PATCH.
func (c *Client) DeactivateAdsInPosition(ctx context.Context, position domain.AdPosition, exceptID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeactivateAdsInPosition")
	defer span.End()

	filter := url.Values{
		"position":  {eq(strconv.Itoa(int(position)))},
		"is_active": {eq("true")},
	}
	if exceptID != "" {
		filter.Set("id", "neq."+exceptID)
	}
	return c.doPatch(ctx, "ads", filter, map[string]any{"is_active": false})
}

// ============================================================
// Profiles
// ============================================================

func (c *Client) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()

	body, err := c.doRequest(ctx, "profiles", url.Values{
		"select": {"*"},
		"id":     {eq(id)},
		"limit":  {"1"},
	})
	if err != nil {
		return nil, err
	}
	rows, err := c.decodeProfiles(body, "profile")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: id}
	}
	return &rows[0], nil
}

func (c *Client) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfiles")
	defer span.End()

	body, err := c.doRequest(ctx, "profiles", url.Values{
		"select": {"*"},
		"order":  {"created_at.desc"},
	})
	if err != nil {
		return nil, err
	}
	return c.decodeProfiles(body, "profiles")
}

// profileRow keeps role as text so one unexpected value does not fail a
// whole listing.
type profileRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// decodeProfiles maps stored roles to tiers. Empty or unknown roles decode to
// visitor, the lowest tier.
func (c *Client) decodeProfiles(body []byte, what string) ([]domain.Profile, error) {
	rows, err := decodeRows[profileRow](body, what)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, len(rows))
	for i, r := range rows {
		role := domain.RoleVisitor
		if r.Role != "" {
			parsed, err := domain.ParseRole(r.Role)
			if err != nil {
				c.logger.Warn("supabase: unknown role on profile, treating as visitor",
					zap.String("id", r.ID),
					zap.String("role", r.Role),
				)
			} else {
				role = parsed
			}
		}
		profiles[i] = domain.Profile{
			ID:        r.ID,
			Email:     r.Email,
			FullName:  r.FullName,
			Role:      role,
			CreatedAt: r.CreatedAt,
		}
	}
	return profiles, nil
}

func (c *Client) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateRole")
	defer span.End()

	return c.doPatchRow(ctx, "profiles", "profile", id, map[string]any{"role": role.String()})
}

// ============================================================
// Site settings
// ============================================================

func (c *Client) GetSettings(ctx context.Context) (*domain.SiteSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSettings")
	defer span.End()

	body, err := c.doRequest(ctx, "site_settings", url.Values{
		"select": {"*"},
		"id":     {eq(domain.SiteSettingsID)},
		"limit":  {"1"},
	})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[domain.SiteSettings](body, "site_settings")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "site_settings", ID: domain.SiteSettingsID}
	}
	return &rows[0], nil
}

func (c *Client) UpdateSettings(ctx context.Context, s *domain.SiteSettings) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateSettings")
	defer span.End()

	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	return c.doPatchRow(ctx, "site_settings", "site_settings", domain.SiteSettingsID, map[string]any{
		"site_name":        s.SiteName,
		"site_description": s.SiteDescription,
		"logo_url":         s.LogoURL,
		"favicon_url":      s.FaviconURL,
		"primary_color":    s.PrimaryColor,
		"updated_at":       updatedAt.Format(time.RFC3339),
	})
}
