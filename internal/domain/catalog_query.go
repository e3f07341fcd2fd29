package domain

import (
	"sort"
	"strings"
)

// CatalogFilter is the public browsing state: an optional category slug and an
// optional free-text search. It is passed in explicitly on every listing.
type CatalogFilter struct {
	CategorySlug string
	Search       string
}

// Normalized trims both inputs.
func (f CatalogFilter) Normalized() CatalogFilter {
	return CatalogFilter{
		CategorySlug: strings.TrimSpace(f.CategorySlug),
		Search:       strings.TrimSpace(f.Search),
	}
}

// UsesCategory reports whether the category scope applies. Search is catalog-wide
// and supersedes category browsing.
func (f CatalogFilter) UsesCategory() bool {
	n := f.Normalized()
	return n.CategorySlug != "" && n.Search == ""
}

// ProductQuery is a backend-independent product listing request.
type ProductQuery struct {
	// ActiveOnly restricts to is_active = true.
	ActiveOnly bool
	// CategoryIDs, when non-nil, restricts category_id to the set.
	CategoryIDs []string
	// TitleContains is a case-insensitive substring match on title.
	TitleContains string
	// ID restricts to a single product.
	ID string
}

// ComposeProductQuery builds the listing request for a filter. scope holds the
// resolved category id followed by its children; nil means the slug did not
// resolve (or was not given) and no category constraint applies.
func ComposeProductQuery(f CatalogFilter, scope []string) ProductQuery {
	f = f.Normalized()
	q := ProductQuery{ActiveOnly: true}
	if f.Search != "" {
		q.TitleContains = f.Search
		return q
	}
	if f.CategorySlug != "" && len(scope) > 0 {
		q.CategoryIDs = append([]string(nil), scope...)
	}
	return q
}

// SortCatalog orders products featured first, then newest first.
func SortCatalog(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].IsFeatured != products[j].IsFeatured {
			return products[i].IsFeatured
		}
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
}

// CategoryScope returns root followed by the ids of its direct children.
func CategoryScope(root Category, children []Category) []string {
	ids := make([]string, 0, len(children)+1)
	ids = append(ids, root.ID)
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return ids
}

// OrganizeCategories groups a flat list into roots with their children, keeping
// the input order within each level. Children whose parent is missing are
// promoted to roots so nothing disappears from the console.
func OrganizeCategories(categories []Category) []CategoryNode {
	byID := make(map[string]bool, len(categories))
	for _, c := range categories {
		byID[c.ID] = true
	}

	nodes := make([]CategoryNode, 0, len(categories))
	index := make(map[string]int)
	for _, c := range categories {
		if c.IsRoot() || !byID[*c.ParentID] {
			index[c.ID] = len(nodes)
			nodes = append(nodes, CategoryNode{Category: c, Children: []Category{}})
		}
	}
	for _, c := range categories {
		if c.IsRoot() {
			continue
		}
		if _, isNode := index[c.ID]; isNode {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			nodes[i].Children = append(nodes[i].Children, c)
			continue
		}
		// parent is itself a child: depth > 2 slipped past validation
		index[c.ID] = len(nodes)
		nodes = append(nodes, CategoryNode{Category: c, Children: []Category{}})
	}
	return nodes
}
