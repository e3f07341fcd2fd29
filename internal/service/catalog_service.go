package service

import (
	"context"
	"errors"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var catalogTracer = otel.Tracer("service/catalog")

const categoriesCacheKey = "categories:all"

// CatalogService serves the public storefront.
type CatalogService struct {
	categories port.CategoryStore
	products   port.ProductStore
	ads        port.AdStore
	cache      port.Cache[[]domain.Category]
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewCatalogService creates the public catalog service.
func NewCatalogService(
	categories port.CategoryStore,
	products port.ProductStore,
	ads port.AdStore,
	cache port.Cache[[]domain.Category],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		ads:        ads,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// ListProducts returns the active products matching filter, featured first
// then newest first. A search term is catalog-wide and ignores the category.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.CatalogFilter) ([]domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()
	start := time.Now()

	filter = filter.Normalized()
	span.SetAttributes(
		attribute.String("catalog.category", filter.CategorySlug),
		attribute.String("catalog.search", filter.Search),
	)

	var scope []string
	mode := "all"
	switch {
	case filter.Search != "":
		mode = "search"
	case filter.UsesCategory():
		mode = "category"
		var err error
		scope, err = s.resolveScope(ctx, filter.CategorySlug)
		if err != nil {
			return nil, err
		}
	}

	products, err := s.products.QueryProducts(ctx, domain.ComposeProductQuery(filter, scope))
	if err != nil {
		s.metrics.IncrBackendError("products")
		s.logger.Error("catalog: product query failed",
			zap.String("category", filter.CategorySlug),
			zap.String("search", filter.Search),
			zap.Error(err),
		)
		return nil, err
	}

	domain.SortCatalog(products)
	domain.ResolveProductIcons(products)
	s.metrics.IncrCatalogQuery(mode)
	s.metrics.RecordRequestDuration("catalog.list_products", time.Since(start))
	return products, nil
}

// resolveScope returns the category id followed by its children. An unknown
// slug yields nil: the listing falls back to the whole catalog.
func (s *CatalogService) resolveScope(ctx context.Context, slug string) ([]string, error) {
	root, err := s.categories.GetCategoryBySlug(ctx, slug)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			s.logger.Debug("catalog: unknown category slug", zap.String("slug", slug))
			return nil, nil
		}
		s.metrics.IncrBackendError("categories")
		return nil, err
	}

	children, err := s.categories.ListChildCategories(ctx, root.ID)
	if err != nil {
		s.metrics.IncrBackendError("categories")
		return nil, err
	}
	return domain.CategoryScope(*root, children), nil
}

// GetProduct returns one active product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	if id == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	products, err := s.products.QueryProducts(ctx, domain.ProductQuery{ActiveOnly: true, ID: id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, &domain.ErrNotFound{Resource: "product", ID: id}
	}
	domain.ResolveProductIcons(products[:1])
	return &products[0], nil
}

// Categories returns every category, ordered by name. The list is cached.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.Categories")
	defer span.End()

	if cached, ok := s.cache.Get(categoriesCacheKey); ok {
		s.metrics.IncrCacheHit("categories")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("categories")

	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		s.metrics.IncrBackendError("categories")
		return nil, err
	}
	domain.ResolveCategoryIcons(categories)
	s.cache.Set(categoriesCacheKey, categories)
	return categories, nil
}

// CategoryTree returns the sidebar: roots with their children.
func (s *CatalogService) CategoryTree(ctx context.Context) ([]domain.CategoryNode, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return domain.OrganizeCategories(categories), nil
}

// InvalidateCategories drops the cached category list after a write.
func (s *CatalogService) InvalidateCategories() {
	s.cache.Delete(categoriesCacheKey)
}

// ActiveAds returns the ads shown on the home page, ordered by slot.
func (s *CatalogService) ActiveAds(ctx context.Context) ([]domain.Ad, error) {
	ctx, span := catalogTracer.Start(ctx, "CatalogService.ActiveAds")
	defer span.End()

	ads, err := s.ads.ListAds(ctx, true, domain.MaxPublicAds)
	if err != nil {
		s.metrics.IncrBackendError("ads")
		return nil, err
	}
	return ads, nil
}
