// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from the hosted backend adapters.
package port

import (
	"context"
	"io"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// CategoryStore reads and writes the categories table.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListChildCategories(ctx context.Context, parentID string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// ProductStore reads and writes the products table.
type ProductStore interface {
	QueryProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProducts(ctx context.Context, ids []string) error
	SetProductsActive(ctx context.Context, ids []string, active bool) error
}

// AdStore reads and writes the ads table.
type AdStore interface {
	ListAds(ctx context.Context, activeOnly bool, limit int) ([]domain.Ad, error)
	GetAd(ctx context.Context, id string) (*domain.Ad, error)
	CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error)
	UpdateAd(ctx context.Context, ad *domain.Ad) error
	DeleteAd(ctx context.Context, id string) error
	// DeactivateAdsInPosition clears is_active on every ad in the slot except
	// exceptID (empty means no exception).
	DeactivateAdsInPosition(ctx context.Context, position domain.AdPosition, exceptID string) error
}

// ProfileStore reads and writes the profiles table.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
}

// SettingsStore reads and writes the site_settings singleton.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*domain.SiteSettings, error)
	UpdateSettings(ctx context.Context, s *domain.SiteSettings) error
}

// AuthGateway is the hosted auth service.
type AuthGateway interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*domain.AuthUser, error)
	UpdatePassword(ctx context.Context, accessToken, password string) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
}

// Inviter sends an invitation email and creates the pending user.
type Inviter interface {
	Invite(ctx context.Context, accessToken string, req *domain.InviteRequest) (*domain.InviteResult, error)
}

// ObjectStorage uploads public assets.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, body io.Reader, cacheControl time.Duration) error
	PublicURL(objectPath string) string
}

type accessTokenKey struct{}

// WithAccessToken attaches the caller's access token to ctx. Backend adapters
// forward it so that row-level security evaluates against the real user.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessToken returns the token attached by WithAccessToken, if any.
func AccessToken(ctx context.Context) string {
	v, _ := ctx.Value(accessTokenKey{}).(string)
	return v
}
