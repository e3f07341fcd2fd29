package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/cache"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr(s string) *string { return &s }

func newCatalog(categories *fakeCategoryStore, products *fakeProductStore, ads *fakeAdStore, metrics *observability.Metrics, logger *zap.Logger) *service.CatalogService {
	return service.NewCatalogService(categories, products, ads, cache.New[[]domain.Category](time.Minute), metrics, logger)
}

func catalogFixture() (*fakeCategoryStore, *fakeProductStore) {
	categories := &fakeCategoryStore{categories: []domain.Category{
		{ID: "c-tools", Name: "Tools", Slug: "tools"},
		{ID: "c-design", Name: "Design", Slug: "design", ParentID: ptr("c-tools")},
		{ID: "c-writing", Name: "Writing", Slug: "writing", ParentID: ptr("c-tools")},
		{ID: "c-courses", Name: "Courses", Slug: "courses"},
	}}

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	products := &fakeProductStore{products: []domain.Product{
		{ID: "figma", Title: "Figma Kit", IsActive: true, CategoryID: ptr("c-design"), CreatedAt: base},
		{ID: "notion", Title: "Notion Pack", IsActive: true, CategoryID: ptr("c-writing"), CreatedAt: base.Add(2 * time.Hour)},
		{ID: "toolbox", Title: "Toolbox", IsActive: true, IsFeatured: true, CategoryID: ptr("c-tools"), CreatedAt: base.Add(-time.Hour)},
		{ID: "go-course", Title: "Go Course", IsActive: true, CategoryID: ptr("c-courses"), CreatedAt: base.Add(3 * time.Hour)},
		{ID: "hidden", Title: "Hidden Figma", IsActive: false, CategoryID: ptr("c-tools"), CreatedAt: base},
	}}
	return categories, products
}

func TestCatalogService_ParentCategoryIncludesChildren(t *testing.T) {
	categories, products := catalogFixture()
	metrics, logger := testDeps()
	svc := newCatalog(categories, products, newFakeAdStore(), metrics, logger)

	got, err := svc.ListProducts(context.Background(), domain.CatalogFilter{CategorySlug: "tools"})
	require.NoError(t, err)

	assert.Equal(t, []string{"toolbox", "notion", "figma"}, productIDs(got))
	assert.ElementsMatch(t, []string{"c-tools", "c-design", "c-writing"}, products.lastQuery().CategoryIDs)
}

func TestCatalogService_ChildCategoryOnly(t *testing.T) {
	categories, products := catalogFixture()
	metrics, logger := testDeps()
	svc := newCatalog(categories, products, newFakeAdStore(), metrics, logger)

	got, err := svc.ListProducts(context.Background(), domain.CatalogFilter{CategorySlug: "design"})
	require.NoError(t, err)

	assert.Equal(t, []string{"figma"}, productIDs(got))
}

func TestCatalogService_SearchIgnoresCategory(t *testing.T) {
	categories, products := catalogFixture()
	metrics, logger := testDeps()
	svc := newCatalog(categories, products, newFakeAdStore(), metrics, logger)

	got, err := svc.ListProducts(context.Background(), domain.CatalogFilter{CategorySlug: "courses", Search: "figma"})
	require.NoError(t, err)

	assert.Equal(t, []string{"figma"}, productIDs(got), "inactive matches stay hidden")
	assert.Nil(t, products.lastQuery().CategoryIDs)
	assert.Zero(t, categories.slugLooks, "the slug is not even resolved while searching")
}

func TestCatalogService_UnknownSlugListsEverything(t *testing.T) {
	categories, products := catalogFixture()
	metrics, logger := testDeps()
	svc := newCatalog(categories, products, newFakeAdStore(), metrics, logger)

	got, err := svc.ListProducts(context.Background(), domain.CatalogFilter{CategorySlug: "nope"})
	require.NoError(t, err)

	assert.Equal(t, []string{"toolbox", "go-course", "notion", "figma"}, productIDs(got))
}

func TestCatalogService_GetProduct(t *testing.T) {
	categories, products := catalogFixture()
	metrics, logger := testDeps()
	svc := newCatalog(categories, products, newFakeAdStore(), metrics, logger)
	ctx := context.Background()

	p, err := svc.GetProduct(ctx, "figma")
	require.NoError(t, err)
	assert.Equal(t, "Figma Kit", p.Title)

	var notFound *domain.ErrNotFound
	_, err = svc.GetProduct(ctx, "hidden")
	assert.ErrorAs(t, err, &notFound, "inactive products are not public")

	var validation *domain.ErrValidation
	_, err = svc.GetProduct(ctx, "")
	assert.ErrorAs(t, err, &validation)
}

func TestCatalogService_CategoriesAreCached(t *testing.T) {
	categories, products := catalogFixture()
	metrics, logger := testDeps()
	svc := newCatalog(categories, products, newFakeAdStore(), metrics, logger)
	ctx := context.Background()

	tree, err := svc.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Len(t, tree[0].Children, 2)

	_, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, categories.lists)

	svc.InvalidateCategories()
	_, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, categories.lists)
}

func TestCatalogService_ReadsResolveIcons(t *testing.T) {
	categories := &fakeCategoryStore{categories: []domain.Category{{ID: "c-1", Name: "Plain", Slug: "plain"}}}
	products := &fakeProductStore{products: []domain.Product{{
		ID: "p-1", IsActive: true,
		Features: []domain.Feature{{Icon: domain.IconNone, Title: "Legacy"}},
		Category: &domain.Category{ID: "c-1"},
	}}}
	metrics, logger := testDeps()
	svc := newCatalog(categories, products, newFakeAdStore(), metrics, logger)
	ctx := context.Background()

	listed, err := svc.ListProducts(ctx, domain.CatalogFilter{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFeatureIcon, listed[0].Features[0].Icon)
	assert.Equal(t, domain.DefaultCategoryIcon, listed[0].Category.Icon)

	tree, err := svc.CategoryTree(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategoryIcon, tree[0].Icon)
}

func productIDs(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
