package handler

import (
	"net/http"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
	"github.com/zaeom/storefront-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Products: /v1/admin/products
// ============================================================

func adminListProductsHandler(svc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/products")
		defer span.End()

		products, err := svc.List(ctx, ActorFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": products, "total": len(products)})
	}
}

// saveProductHandler serves both POST (create) and PUT /{id} (update).
func saveProductHandler(svc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" /v1/admin/products")
		defer span.End()

		var in domain.ProductInput
		if !decodeJSON(w, r, &in) {
			return
		}
		// Only PUT /{id} updates; an id in a POST body is ignored.
		status := http.StatusCreated
		in.ID = chi.URLParam(r, "id")
		if in.ID != "" {
			status = http.StatusOK
		}
		span.SetAttributes(attribute.String("product.id", in.ID))

		product, err := svc.Save(ctx, ActorFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, status, product)
	}
}

func deleteProductHandler(svc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/products/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if err := svc.Delete(ctx, ActorFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "product deleted", ID: id})
	}
}

func bulkProductsHandler(svc *service.ProductService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/products/bulk")
		defer span.End()

		var req domain.BulkProductsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		span.SetAttributes(
			attribute.String("bulk.action", string(req.Action)),
			attribute.Int("bulk.count", len(req.IDs)),
		)

		if err := svc.Bulk(ctx, ActorFromContext(ctx), &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"action":   req.Action,
			"affected": len(req.IDs),
		})
	}
}

// ============================================================
// Categories: /v1/admin/categories
// ============================================================

func adminCategoryTreeHandler(svc *service.CategoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/categories")
		defer span.End()

		tree, err := svc.Tree(ctx, ActorFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": tree})
	}
}

func saveCategoryHandler(svc *service.CategoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" /v1/admin/categories")
		defer span.End()

		var in domain.CategoryInput
		if !decodeJSON(w, r, &in) {
			return
		}
		status := http.StatusCreated
		in.ID = chi.URLParam(r, "id")
		if in.ID != "" {
			status = http.StatusOK
		}

		category, err := svc.Save(ctx, ActorFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, status, category)
	}
}

func deleteCategoryHandler(svc *service.CategoryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/categories/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if err := svc.Delete(ctx, ActorFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "category deleted", ID: id})
	}
}

// ============================================================
// Ads: /v1/admin/ads
// ============================================================

func adminListAdsHandler(svc *service.AdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/admin/ads")
		defer span.End()

		ads, err := svc.List(ctx, ActorFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ads": ads})
	}
}

func saveAdHandler(svc *service.AdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" /v1/admin/ads")
		defer span.End()

		var in domain.AdInput
		if !decodeJSON(w, r, &in) {
			return
		}
		status := http.StatusCreated
		in.ID = chi.URLParam(r, "id")
		if in.ID != "" {
			status = http.StatusOK
		}
		span.SetAttributes(
			attribute.Int("ad.position", int(in.Position)),
			attribute.Bool("ad.active", in.IsActive),
		)

		ad, err := svc.Save(ctx, ActorFromContext(ctx), &in)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, status, ad)
	}
}

func deleteAdHandler(svc *service.AdService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/admin/ads/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if err := svc.Delete(ctx, ActorFromContext(ctx), id); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "ad deleted", ID: id})
	}
}
