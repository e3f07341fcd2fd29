package service

import (
	"context"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// DashboardService aggregates the back-office load into one call.
type DashboardService struct {
	products   *ProductService
	categories *CategoryService
	ads        *AdService
	roles      *RoleService
	settings   *SettingsService
	logger     *zap.Logger
}

// NewDashboardService creates the dashboard aggregator.
func NewDashboardService(
	products *ProductService,
	categories *CategoryService,
	ads *AdService,
	roles *RoleService,
	settings *SettingsService,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		products:   products,
		categories: categories,
		ads:        ads,
		roles:      roles,
		settings:   settings,
		logger:     logger,
	}
}

// Load fetches every console section in parallel. Profiles are only loaded
// for admin tier; sellers get an empty list.
func (s *DashboardService) Load(ctx context.Context, actor domain.Actor) (*domain.Dashboard, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Load")
	defer span.End()

	if err := requireConsole(actor, "open console"); err != nil {
		return nil, err
	}

	d := &domain.Dashboard{Actor: actor, Profiles: []domain.Profile{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := s.products.List(gctx, actor)
		d.Products = products
		return err
	})
	g.Go(func() error {
		tree, err := s.categories.Tree(gctx, actor)
		d.Categories = tree
		return err
	})
	g.Go(func() error {
		ads, err := s.ads.List(gctx, actor)
		d.Ads = ads
		return err
	})
	g.Go(func() error {
		settings, err := s.settings.Get(gctx)
		d.Settings = settings
		return err
	})
	if actor.Role.IsAdminTier() {
		g.Go(func() error {
			profiles, err := s.roles.Users(gctx, actor)
			d.Profiles = profiles
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard: load failed", zap.String("actor", actor.UserID), zap.Error(err))
		return nil, err
	}
	return d, nil
}
