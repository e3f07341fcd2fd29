package service

import (
	"context"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var categoryTracer = otel.Tracer("service/categories")

// CategoryService manages the two-level category tree.
type CategoryService struct {
	store   port.CategoryStore
	catalog *CatalogService
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewCategoryService creates the category administration service. Writes
// invalidate the catalog's cached category list.
func NewCategoryService(store port.CategoryStore, catalog *CatalogService, metrics *observability.Metrics, logger *zap.Logger) *CategoryService {
	return &CategoryService{store: store, catalog: catalog, metrics: metrics, logger: logger}
}

// Tree returns roots followed by their children.
func (s *CategoryService) Tree(ctx context.Context, actor domain.Actor) ([]domain.CategoryNode, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.Tree")
	defer span.End()

	if err := requireConsole(actor, "list categories"); err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.metrics.IncrBackendError("categories")
		return nil, err
	}
	domain.ResolveCategoryIcons(categories)
	return domain.OrganizeCategories(categories), nil
}

// Save creates or updates a category. The slug is derived from the name when
// empty, and the parent must keep the tree at most two levels deep.
func (s *CategoryService) Save(ctx context.Context, actor domain.Actor, in *domain.CategoryInput) (*domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.Save")
	defer span.End()

	if err := requireAdmin(actor, "save category"); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = domain.Slugify(in.Name)
	}
	if !domain.IsValidSlug(slug) {
		return nil, &domain.ErrValidation{Field: "slug", Message: "must contain only a-z, 0-9 and single hyphens"}
	}

	parentID := strings.TrimSpace(in.ParentID)
	if parentID != "" || in.ID != "" {
		existing, err := s.store.ListCategories(ctx)
		if err != nil {
			s.metrics.IncrBackendError("categories")
			return nil, err
		}
		if err := domain.ValidateParent(in.ID, parentID, existing); err != nil {
			return nil, err
		}
	}

	icon := in.Icon
	if !icon.InSet(domain.IconSetCategory) {
		icon = domain.IconNone
	}
	cat := &domain.Category{
		ID:   in.ID,
		Name: strings.TrimSpace(in.Name),
		Slug: slug,
		Icon: icon,
	}
	if parentID != "" {
		cat.ParentID = &parentID
	}

	defer s.catalog.InvalidateCategories()

	if in.ID == "" {
		created, err := s.store.CreateCategory(ctx, cat)
		if err != nil {
			s.metrics.IncrBackendError("categories")
			return nil, err
		}
		s.logger.Info("categories: created", zap.String("id", created.ID), zap.String("slug", slug))
		return created, nil
	}

	if err := s.store.UpdateCategory(ctx, cat); err != nil {
		s.metrics.IncrBackendError("categories")
		return nil, err
	}
	s.logger.Info("categories: updated", zap.String("id", cat.ID), zap.String("slug", slug))
	return cat, nil
}

// Delete removes a category. Products pointing at it keep a null category.
func (s *CategoryService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.Delete")
	defer span.End()

	if err := requireAdmin(actor, "delete category"); err != nil {
		return err
	}
	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.metrics.IncrBackendError("categories")
		return err
	}
	s.catalog.InvalidateCategories()
	s.logger.Info("categories: deleted", zap.String("id", id), zap.String("actor", actor.UserID))
	return nil
}
