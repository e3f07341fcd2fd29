package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zaeom/storefront-bfa-go/internal/domain"
)

// ============================================================
// PostgREST helpers for GET, POST, PATCH, DELETE
// ============================================================

func (c *Client) restURL(table string, query url.Values) string {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest reads rows. It is retried on transient failures.
func (c *Client) doRequest(ctx context.Context, table string, query url.Values) ([]byte, error) {
	var body []byte
	err := c.read(ctx, table, func() error {
		_, b, err := c.send(ctx, http.MethodGet, c.restURL(table, query), nil, nil)
		body = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doPost inserts one row and returns its representation.
func (c *Client) doPost(ctx context.Context, table string, data any) ([]byte, error) {
	var body []byte
	err := c.write(ctx, table, func() error {
		_, b, err := c.send(ctx, http.MethodPost, c.restURL(table, nil), data, map[string]string{
			"Prefer": "return=representation",
		})
		body = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// doPatch updates every row matching filter. Zero matches is not an error.
func (c *Client) doPatch(ctx context.Context, table string, filter url.Values, data any) error {
	if len(filter) == 0 {
		return errors.New("supabase: refusing PATCH without a filter")
	}
	return c.write(ctx, table, func() error {
		_, _, err := c.send(ctx, http.MethodPatch, c.restURL(table, filter), data, map[string]string{
			"Prefer": "return=minimal",
		})
		return err
	})
}

// doPatchRow updates the row with the given id. PostgREST answers an update
// that matches nothing (unknown id, or a row hidden by row-level security)
// with success, so the representation is requested and an empty one is
// reported as ErrNotFound.
func (c *Client) doPatchRow(ctx context.Context, table, resource, id string, data any) error {
	if id == "" {
		return &domain.ErrValidation{Field: "id", Message: "is required"}
	}
	var body []byte
	err := c.write(ctx, table, func() error {
		_, b, err := c.send(ctx, http.MethodPatch, c.restURL(table, idFilter(id)), data, map[string]string{
			"Prefer": "return=representation",
		})
		body = b
		return err
	})
	if err != nil {
		return err
	}
	rows, err := decodeRows[json.RawMessage](body, resource)
	if err != nil {
		return &domain.ErrExternalService{Service: table, Err: err}
	}
	if len(rows) == 0 {
		return &domain.ErrNotFound{Resource: resource, ID: id}
	}
	return nil
}

// doDelete removes every row matching filter.
func (c *Client) doDelete(ctx context.Context, table string, filter url.Values) error {
	if len(filter) == 0 {
		return errors.New("supabase: refusing DELETE without a filter")
	}
	return c.write(ctx, table, func() error {
		_, _, err := c.send(ctx, http.MethodDelete, c.restURL(table, filter), nil, nil)
		return err
	})
}

// ============================================================
// Filter rendering
// ============================================================

func eq(v string) string { return "eq." + v }

// inList renders a PostgREST in.(...) filter with every value quoted.
func inList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, "")

// ilikeContains renders a case-insensitive substring filter. LIKE wildcards in
// the term are matched literally.
func ilikeContains(term string) string {
	return "ilike.*" + likeEscaper.Replace(term) + "*"
}

const productSelect = "*,category:categories(*)"

// renderProductQuery turns a listing request into PostgREST parameters.
// Rows come back featured first, then newest first.
func renderProductQuery(q domain.ProductQuery) url.Values {
	v := url.Values{}
	v.Set("select", productSelect)
	if q.ActiveOnly {
		v.Set("is_active", eq("true"))
	}
	if q.ID != "" {
		v.Set("id", eq(q.ID))
	}
	if q.CategoryIDs != nil {
		v.Set("category_id", inList(q.CategoryIDs))
	}
	if q.TitleContains != "" {
		v.Set("title", ilikeContains(q.TitleContains))
	}
	v.Set("order", "is_featured.desc,created_at.desc")
	return v
}

func idFilter(id string) url.Values {
	return url.Values{"id": {eq(id)}}
}

func idsFilter(ids []string) url.Values {
	return url.Values{"id": {inList(ids)}}
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
