package service_test

import (
	"context"
	"testing"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdService_ActivatingClearsOnlyItsSlot(t *testing.T) {
	store := newFakeAdStore(
		domain.Ad{ID: "A", Title: "A", Position: domain.AdPositionMidFeed, IsActive: false},
		domain.Ad{ID: "B", Title: "B", Position: domain.AdPositionMidFeed, IsActive: true},
		domain.Ad{ID: "C", Title: "C", Position: domain.AdPositionHeroSide, IsActive: true},
	)
	metrics, logger := testDeps()
	svc := service.NewAdService(store, metrics, logger)

	saved, err := svc.Save(context.Background(), admin, &domain.AdInput{
		ID: "A", Title: "A", Position: domain.AdPositionMidFeed, IsActive: true,
	})
	require.NoError(t, err)
	assert.True(t, saved.IsActive)

	assert.True(t, store.ads["A"].IsActive)
	assert.False(t, store.ads["B"].IsActive, "sibling in the same slot is deactivated")
	assert.True(t, store.ads["C"].IsActive, "other slot untouched")
	assert.Equal(t, []string{"get", "deactivate", "update"}, store.calls, "siblings are cleared before the ad is saved")
}

func TestAdService_CreateActiveClearsWholeSlot(t *testing.T) {
	store := newFakeAdStore(domain.Ad{ID: "B", Position: domain.AdPositionHeroSide, IsActive: true})
	metrics, logger := testDeps()
	svc := service.NewAdService(store, metrics, logger)

	saved, err := svc.Save(context.Background(), master, &domain.AdInput{
		Title: "New", Position: domain.AdPositionHeroSide, IsActive: true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.False(t, store.ads["B"].IsActive)
	assert.Equal(t, []string{"deactivate", "create"}, store.calls)
}

func TestAdService_InactiveSaveHasNoSideEffect(t *testing.T) {
	store := newFakeAdStore(domain.Ad{ID: "B", Position: domain.AdPositionMidFeed, IsActive: true})
	metrics, logger := testDeps()
	svc := service.NewAdService(store, metrics, logger)

	_, err := svc.Save(context.Background(), admin, &domain.AdInput{
		Title: "Draft", Position: domain.AdPositionMidFeed, IsActive: false,
	})
	require.NoError(t, err)

	assert.True(t, store.ads["B"].IsActive)
	assert.Equal(t, []string{"create"}, store.calls)
}

func TestAdService_FailedSlotClearAbortsSave(t *testing.T) {
	store := newFakeAdStore(domain.Ad{ID: "A", Position: domain.AdPositionMidFeed})
	store.failOn = "deactivate"
	metrics, logger := testDeps()
	svc := service.NewAdService(store, metrics, logger)

	_, err := svc.Save(context.Background(), admin, &domain.AdInput{
		ID: "A", Title: "A", Position: domain.AdPositionMidFeed, IsActive: true,
	})

	var external *domain.ErrExternalService
	require.ErrorAs(t, err, &external)
	assert.False(t, store.ads["A"].IsActive)
	assert.Equal(t, []string{"get", "deactivate"}, store.calls)
}

func TestAdService_UnknownIDLeavesSlotAlone(t *testing.T) {
	store := newFakeAdStore(domain.Ad{ID: "B", Position: domain.AdPositionMidFeed, IsActive: true})
	metrics, logger := testDeps()
	svc := service.NewAdService(store, metrics, logger)

	_, err := svc.Save(context.Background(), admin, &domain.AdInput{
		ID: "does-not-exist", Title: "Ghost", Position: domain.AdPositionMidFeed, IsActive: true,
	})

	var notFound *domain.ErrNotFound
	require.ErrorAs(t, err, &notFound)
	assert.True(t, store.ads["B"].IsActive, "the live ad keeps its slot")
	assert.Equal(t, []string{"get"}, store.calls)
	assert.NotContains(t, store.ads, "does-not-exist")
}

func TestAdService_Authorization(t *testing.T) {
	store := newFakeAdStore(domain.Ad{ID: "A"})
	metrics, logger := testDeps()
	svc := service.NewAdService(store, metrics, logger)
	ctx := context.Background()

	var forbidden *domain.ErrForbidden
	_, err := svc.Save(ctx, seller, &domain.AdInput{Title: "x", IsActive: true})
	assert.ErrorAs(t, err, &forbidden)

	assert.ErrorAs(t, svc.Delete(ctx, admin, "A"), &forbidden, "delete is master only")
	assert.Empty(t, store.calls, "rejections never reach the backend")

	assert.NoError(t, svc.Delete(ctx, master, "A"))
	assert.NotContains(t, store.ads, "A")
}

func TestAdService_RejectsUnknownPosition(t *testing.T) {
	store := newFakeAdStore()
	metrics, logger := testDeps()
	svc := service.NewAdService(store, metrics, logger)

	_, err := svc.Save(context.Background(), admin, &domain.AdInput{Title: "x", Position: 7})

	var validation *domain.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "position", validation.Field)
}

func TestCatalogService_ActiveAdsCapsAtTwo(t *testing.T) {
	ads := newFakeAdStore()
	metrics, logger := testDeps()
	svc := newCatalog(&fakeCategoryStore{}, &fakeProductStore{}, ads, metrics, logger)

	_, err := svc.ActiveAds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [2]any{true, domain.MaxPublicAds}, ads.listArg)
}
