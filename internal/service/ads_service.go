package service

import (
	"context"
	"errors"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var adsTracer = otel.Tracer("service/ads")

// AdService manages promotional slots. Each position shows at most one
// active ad: activating an ad first deactivates its siblings in the slot.
//
// The two writes are independent calls. A failure between them leaves the
// slot empty rather than double-booked; concurrent activations of the same
// slot are last-write-wins.
type AdService struct {
	store   port.AdStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAdService creates the ad slot service.
func NewAdService(store port.AdStore, metrics *observability.Metrics, logger *zap.Logger) *AdService {
	return &AdService{store: store, metrics: metrics, logger: logger}
}

// List returns every ad ordered by position.
func (s *AdService) List(ctx context.Context, actor domain.Actor) ([]domain.Ad, error) {
	ctx, span := adsTracer.Start(ctx, "AdService.List")
	defer span.End()

	if err := requireConsole(actor, "list ads"); err != nil {
		return nil, err
	}
	ads, err := s.store.ListAds(ctx, false, 0)
	if err != nil {
		s.metrics.IncrBackendError("ads")
		return nil, err
	}
	return ads, nil
}

// Save creates or updates an ad, enforcing slot exclusivity when it is active.
func (s *AdService) Save(ctx context.Context, actor domain.Actor, in *domain.AdInput) (*domain.Ad, error) {
	ctx, span := adsTracer.Start(ctx, "AdService.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("ad.id", in.ID),
		attribute.Int("ad.position", int(in.Position)),
		attribute.Bool("ad.active", in.IsActive),
	)

	if err := requireAdmin(actor, "save ad"); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	ad := &domain.Ad{
		ID:          in.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CTALink:     strings.TrimSpace(in.CTALink),
		IsActive:    in.IsActive,
		Position:    in.Position,
	}

	if ad.ID != "" {
		if _, err := s.store.GetAd(ctx, ad.ID); err != nil {
			var notFound *domain.ErrNotFound
			if !errors.As(err, &notFound) {
				s.metrics.IncrBackendError("ads")
			}
			s.logger.Warn("ads: update target lookup failed", zap.String("id", ad.ID), zap.Error(err))
			return nil, err
		}
	}

	if ad.IsActive {
		if err := s.store.DeactivateAdsInPosition(ctx, ad.Position, ad.ID); err != nil {
			s.metrics.IncrBackendError("ads")
			s.logger.Error("ads: clearing slot failed",
				zap.Int("position", int(ad.Position)),
				zap.String("except", ad.ID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	saved := ad
	if ad.ID == "" {
		created, err := s.store.CreateAd(ctx, ad)
		if err != nil {
			s.metrics.IncrBackendError("ads")
			s.logger.Error("ads: create failed", zap.Int("position", int(ad.Position)), zap.Error(err))
			return nil, err
		}
		saved = created
	} else if err := s.store.UpdateAd(ctx, ad); err != nil {
		s.metrics.IncrBackendError("ads")
		s.logger.Error("ads: update failed", zap.String("id", ad.ID), zap.Error(err))
		return nil, err
	}

	if saved.IsActive {
		s.metrics.IncrAdActivation()
	}
	s.logger.Info("ads: saved",
		zap.String("id", saved.ID),
		zap.Int("position", int(saved.Position)),
		zap.Bool("active", saved.IsActive),
		zap.String("actor", actor.UserID),
	)
	return saved, nil
}

// Delete removes an ad. Master only.
func (s *AdService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := adsTracer.Start(ctx, "AdService.Delete")
	defer span.End()

	if err := requireMaster(actor, "delete ad"); err != nil {
		return err
	}
	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	if err := s.store.DeleteAd(ctx, id); err != nil {
		s.metrics.IncrBackendError("ads")
		return err
	}
	s.logger.Info("ads: deleted", zap.String("id", id), zap.String("actor", actor.UserID))
	return nil
}
