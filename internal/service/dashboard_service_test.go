package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/cache"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dashboardFixture struct {
	svc      *service.DashboardService
	profiles *fakeProfileStore
}

func newDashboard() dashboardFixture {
	metrics, logger := testDeps()
	categories, products := catalogFixture()
	ads := newFakeAdStore(domain.Ad{ID: "A", Title: "A", IsActive: true})
	profiles := rolesFixture()
	settings := &fakeSettingsStore{current: domain.SiteSettings{ID: domain.SiteSettingsID, SiteName: "Zaeom"}}

	catalog := newCatalog(categories, products, ads, metrics, logger)
	svc := service.NewDashboardService(
		service.NewProductService(products, metrics, logger),
		service.NewCategoryService(categories, catalog, metrics, logger),
		service.NewAdService(ads, metrics, logger),
		service.NewRoleService(profiles, &fakeInviter{}, masterEmail, metrics, logger),
		service.NewSettingsService(settings, cache.New[*domain.SiteSettings](time.Minute), metrics, logger),
		logger,
	)
	return dashboardFixture{svc: svc, profiles: profiles}
}

func TestDashboardService_AdminSeesEverything(t *testing.T) {
	f := newDashboard()

	d, err := f.svc.Load(context.Background(), admin)
	require.NoError(t, err)

	assert.Len(t, d.Products, 5, "inactive products are listed in the console")
	assert.Len(t, d.Categories, 2)
	assert.Len(t, d.Ads, 1)
	assert.Len(t, d.Profiles, 5)
	assert.Equal(t, "Zaeom", d.Settings.SiteName)
	assert.Equal(t, admin.UserID, d.Actor.UserID)
}

func TestDashboardService_SellerSkipsProfiles(t *testing.T) {
	f := newDashboard()

	d, err := f.svc.Load(context.Background(), seller)
	require.NoError(t, err)

	assert.NotNil(t, d.Profiles)
	assert.Empty(t, d.Profiles)
	assert.Zero(t, f.profiles.lists)
	assert.Len(t, d.Products, 5)
}

func TestDashboardService_VisitorIsForbidden(t *testing.T) {
	f := newDashboard()

	_, err := f.svc.Load(context.Background(), visitor)

	var forbidden *domain.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
}
