package service

import (
	"context"
	"strings"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var settingsTracer = otel.Tracer("service/settings")

const settingsCacheKey = "settings:" + domain.SiteSettingsID

// SettingsService reads and writes the site-wide branding row.
type SettingsService struct {
	store   port.SettingsStore
	cache   port.Cache[*domain.SiteSettings]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewSettingsService creates the settings service.
func NewSettingsService(store port.SettingsStore, cache port.Cache[*domain.SiteSettings], metrics *observability.Metrics, logger *zap.Logger) *SettingsService {
	return &SettingsService{store: store, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// Get returns the branding. Public and cached.
func (s *SettingsService) Get(ctx context.Context) (*domain.SiteSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.Get")
	defer span.End()

	if cached, ok := s.cache.Get(settingsCacheKey); ok {
		s.metrics.IncrCacheHit("settings")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("settings")

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		s.metrics.IncrBackendError("site_settings")
		return nil, err
	}
	s.cache.Set(settingsCacheKey, settings)
	return settings, nil
}

// Update replaces the branding. Master only.
func (s *SettingsService) Update(ctx context.Context, actor domain.Actor, in *domain.SettingsInput) (*domain.SiteSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.Update")
	defer span.End()

	if err := requireMaster(actor, "update site settings"); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	settings := &domain.SiteSettings{
		ID:              domain.SiteSettingsID,
		SiteName:        strings.TrimSpace(in.SiteName),
		SiteDescription: strings.TrimSpace(in.SiteDescription),
		LogoURL:         strings.TrimSpace(in.LogoURL),
		FaviconURL:      strings.TrimSpace(in.FaviconURL),
		PrimaryColor:    strings.ToUpper(in.PrimaryColor),
		UpdatedAt:       s.now().UTC(),
	}
	if err := s.store.UpdateSettings(ctx, settings); err != nil {
		s.metrics.IncrBackendError("site_settings")
		s.logger.Error("settings: update failed", zap.Error(err))
		return nil, err
	}

	s.cache.Delete(settingsCacheKey)
	s.logger.Info("settings: updated", zap.String("actor", actor.UserID))
	return settings, nil
}
