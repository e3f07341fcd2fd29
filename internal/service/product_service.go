package service

import (
	"context"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/infra/observability"
	"github.com/zaeom/storefront-bfa-go/internal/port"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var productTracer = otel.Tracer("service/products")

// ProductService backs the console's product table and editor.
type ProductService struct {
	store     port.ProductStore
	sanitizer *bluemonday.Policy
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewProductService creates the product administration service.
func NewProductService(store port.ProductStore, metrics *observability.Metrics, logger *zap.Logger) *ProductService {
	return &ProductService{
		store:     store,
		sanitizer: descriptionPolicy(),
		metrics:   metrics,
		logger:    logger,
	}
}

// descriptionPolicy allows the markup the rich-text editor produces.
func descriptionPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("p", "span", "ol", "ul", "li", "pre", "code", "blockquote")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// List returns every product, active or not, featured first then newest first.
func (s *ProductService) List(ctx context.Context, actor domain.Actor) ([]domain.Product, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.List")
	defer span.End()

	if err := requireConsole(actor, "list products"); err != nil {
		return nil, err
	}
	products, err := s.store.QueryProducts(ctx, domain.ProductQuery{})
	if err != nil {
		s.metrics.IncrBackendError("products")
		return nil, err
	}
	domain.SortCatalog(products)
	domain.ResolveProductIcons(products)
	return products, nil
}

// Save inserts a new product or updates an existing one.
func (s *ProductService) Save(ctx context.Context, actor domain.Actor, in *domain.ProductInput) (*domain.Product, error) {
	ctx, span := productTracer.Start(ctx, "ProductService.Save")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", in.ID))

	if err := requireAdmin(actor, "save product"); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	p := s.fromInput(in)
	if in.ID == "" {
		created, err := s.store.CreateProduct(ctx, p)
		if err != nil {
			s.metrics.IncrBackendError("products")
			s.logger.Error("products: create failed", zap.String("title", p.Title), zap.Error(err))
			return nil, err
		}
		s.logger.Info("products: created", zap.String("id", created.ID), zap.String("actor", actor.UserID))
		return created, nil
	}

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		s.metrics.IncrBackendError("products")
		s.logger.Error("products: update failed", zap.String("id", p.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("products: updated", zap.String("id", p.ID), zap.String("actor", actor.UserID))
	return p, nil
}

// fromInput normalizes the form: sanitized description, null category for an
// empty selection, feature icons restricted to the feature picker.
func (s *ProductService) fromInput(in *domain.ProductInput) *domain.Product {
	var categoryID *string
	if id := strings.TrimSpace(in.CategoryID); id != "" {
		categoryID = &id
	}

	features := make([]domain.Feature, 0, len(in.Features))
	for _, f := range in.Features {
		icon := f.Icon
		if !icon.InSet(domain.IconSetFeature) {
			icon = domain.DefaultFeatureIcon
		}
		features = append(features, domain.Feature{
			Icon:     icon,
			Title:    strings.TrimSpace(f.Title),
			Subtitle: strings.TrimSpace(f.Subtitle),
		})
	}

	return &domain.Product{
		ID:          in.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: s.sanitizer.Sanitize(in.Description),
		Type:        in.Type,
		Source:      in.Source,
		CTALink:     strings.TrimSpace(in.CTALink),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		CategoryID:  categoryID,
		IsActive:    in.IsActive,
		IsFeatured:  in.IsFeatured,
		Features:    features,
	}
}

// Delete removes one product. Master only.
func (s *ProductService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	ctx, span := productTracer.Start(ctx, "ProductService.Delete")
	defer span.End()

	if err := requireMaster(actor, "delete product"); err != nil {
		return err
	}
	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	if err := s.store.DeleteProducts(ctx, []string{id}); err != nil {
		s.metrics.IncrBackendError("products")
		return err
	}
	s.logger.Info("products: deleted", zap.String("id", id), zap.String("actor", actor.UserID))
	return nil
}

// Bulk applies one action to a selection. Deleting needs master; toggling
// visibility needs admin tier. An empty selection is a no-op.
func (s *ProductService) Bulk(ctx context.Context, actor domain.Actor, req *domain.BulkProductsRequest) error {
	ctx, span := productTracer.Start(ctx, "ProductService.Bulk")
	defer span.End()
	span.SetAttributes(
		attribute.String("bulk.action", string(req.Action)),
		attribute.Int("bulk.count", len(req.IDs)),
	)

	if err := validateStruct(req); err != nil {
		return err
	}

	var err error
	switch req.Action {
	case domain.BulkDelete:
		if err := requireMaster(actor, "bulk delete products"); err != nil {
			return err
		}
		if len(req.IDs) == 0 {
			return nil
		}
		err = s.store.DeleteProducts(ctx, req.IDs)
	case domain.BulkActivate, domain.BulkDeactivate:
		if err := requireAdmin(actor, "bulk update products"); err != nil {
			return err
		}
		if len(req.IDs) == 0 {
			return nil
		}
		err = s.store.SetProductsActive(ctx, req.IDs, req.Action == domain.BulkActivate)
	}
	if err != nil {
		s.metrics.IncrBackendError("products")
		s.logger.Error("products: bulk action failed",
			zap.String("action", string(req.Action)),
			zap.Int("count", len(req.IDs)),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("products: bulk action applied",
		zap.String("action", string(req.Action)),
		zap.Int("count", len(req.IDs)),
		zap.String("actor", actor.UserID),
	)
	return nil
}
