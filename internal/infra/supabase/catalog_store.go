package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
)

// ============================================================
// Categories: CRUD via PostgREST
// ============================================================

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	body, err := c.doRequest(ctx, "categories", url.Values{
		"select": {"*"},
		"order":  {"name.asc"},
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[domain.Category](body, "categories")
}

func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCategoryBySlug")
	defer span.End()

	body, err := c.doRequest(ctx, "categories", url.Values{
		"select": {"*"},
		"slug":   {eq(slug)},
		"limit":  {"1"},
	})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows[domain.Category](body, "category")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: slug}
	}
	return &rows[0], nil
}

func (c *Client) ListChildCategories(ctx context.Context, parentID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListChildCategories")
	defer span.End()

	body, err := c.doRequest(ctx, "categories", url.Values{
		"select":    {"*"},
		"parent_id": {eq(parentID)},
		"order":     {"name.asc"},
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[domain.Category](body, "categories")
}

func categoryPayload(cat *domain.Category) map[string]any {
	var parent any
	if !cat.IsRoot() {
		parent = *cat.ParentID
	}
	var icon any
	if cat.Icon != domain.IconNone {
		icon = cat.Icon.String()
	}
	return map[string]any{
		"name":      cat.Name,
		"slug":      cat.Slug,
		"icon":      icon,
		"parent_id": parent,
	}
}

func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	body, err := c.doPost(ctx, "categories", categoryPayload(cat))
	if err != nil {
		return nil, err
	}
	return decodeFirst[domain.Category](body, "category")
}

func (c *Client) UpdateCategory(ctx context.Context, cat *domain.Category) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCategory")
	defer span.End()

	return c.doPatchRow(ctx, "categories", "category", cat.ID, categoryPayload(cat))
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCategory")
	defer span.End()

	return c.doDelete(ctx, "categories", idFilter(id))
}

// ============================================================
// Products: CRUD via PostgREST
// ============================================================

func (c *Client) QueryProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Supabase.QueryProducts")
	defer span.End()

	body, err := c.doRequest(ctx, "products", renderProductQuery(q))
	if err != nil {
		return nil, err
	}
	return decodeRows[domain.Product](body, "products")
}

func productPayload(p *domain.Product) map[string]any {
	var categoryID any
	if p.CategoryID != nil && *p.CategoryID != "" {
		categoryID = *p.CategoryID
	}
	features := p.Features
	if features == nil {
		features = []domain.Feature{}
	}
	return map[string]any{
		"title":       p.Title,
		"description": p.Description,
		"type":        p.Type,
		"source":      p.Source,
		"cta_link":    p.CTALink,
		"image_url":   p.ImageURL,
		"category_id": categoryID,
		"is_active":   p.IsActive,
		"is_featured": p.IsFeatured,
		"features":    features,
	}
}

func (c *Client) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateProduct")
	defer span.End()

	body, err := c.doPost(ctx, "products", productPayload(p))
	if err != nil {
		return nil, err
	}
	return decodeFirst[domain.Product](body, "product")
}

func (c *Client) UpdateProduct(ctx context.Context, p *domain.Product) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProduct")
	defer span.End()

	payload := productPayload(p)
	payload["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return c.doPatchRow(ctx, "products", "product", p.ID, payload)
}

func (c *Client) DeleteProducts(ctx context.Context, ids []string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteProducts")
	defer span.End()

	if len(ids) == 0 {
		return nil
	}
	return c.doDelete(ctx, "products", idsFilter(ids))
}

func (c *Client) SetProductsActive(ctx context.Context, ids []string, active bool) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetProductsActive")
	defer span.End()

	if len(ids) == 0 {
		return nil
	}
	return c.doPatch(ctx, "products", idsFilter(ids), map[string]any{"is_active": active})
}

// ============================================================
// Decoding
// ============================================================

func decodeRows[T any](body []byte, what string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []T{}, nil
	}
	var rows []T
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func decodeFirst[T any](body []byte, what string) (*T, error) {
	rows, err := decodeRows[T](body, what)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("decode %s: empty representation", what)
	}
	return &rows[0], nil
}
