// Package catalog implements fuzzy product lookup over the store.
//
// User-supplied product names rarely match catalog rows exactly
// ("Samsung 65 inch TV" vs "Samsung 65-inch TV"), so SearchByName
// tokenizes the query, strips filler words, and first tries a single
// pattern requiring all tokens in order before falling back to
// per-token searches.
package catalog

import (
	"context"
	"strings"

	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/pkg/models"
)

// DefaultLimit caps result sets when the caller does not say otherwise.
const DefaultLimit = 5

// stopwords are dropped from search queries before pattern building.
var stopwords = map[string]bool{
	"inch":   true,
	"inches": true,
	"the":    true,
	"a":      true,
	"an":     true,
	"for":    true,
	"with":   true,
}

// Catalog provides product search and lookup.
type Catalog struct {
	store store.ProductStore
}

// New creates a catalog over the given store.
func New(s store.ProductStore) *Catalog {
	return &Catalog{store: s}
}

// SearchByName finds products matching a free-form name query.
//
// Algorithm: split on whitespace, drop stopwords; with two or more
// significant tokens, query once with a joined pattern that requires all
// tokens to appear in order (%t1%t2%...%); if that matches nothing, fall
// back to searching each token (longer than two characters) on its own and
// return the first non-empty result. With fewer than two significant
// tokens the raw query is searched as a single substring.
//
// An empty result is a valid outcome, not an error.
func (c *Catalog) SearchByName(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := significantTokens(query)

	if len(tokens) < 2 {
		return c.store.SearchProducts(ctx, "%"+strings.TrimSpace(query)+"%", limit)
	}

	// Joined pattern: all tokens, in order.
	joined := "%" + strings.Join(tokens, "%") + "%"
	products, err := c.store.SearchProducts(ctx, joined, limit)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return products, nil
	}

	// Fallback: each token on its own, first non-empty result wins.
	for _, tok := range tokens {
		if len(tok) <= 2 {
			continue
		}
		products, err = c.store.SearchProducts(ctx, "%"+tok+"%", limit)
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			return products, nil
		}
	}
	return nil, nil
}

// ByCategory returns products in a category, optionally capped at
// maxPrice (<= 0 means no ceiling). Result order is store-defined.
func (c *Catalog) ByCategory(ctx context.Context, category string, maxPrice float64, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return c.store.ProductsByCategory(ctx, "%"+category+"%", maxPrice, limit)
}

// ByID returns one product, or store.ErrNotFound.
func (c *Catalog) ByID(ctx context.Context, id string) (*models.Product, error) {
	return c.store.GetProduct(ctx, id)
}

// significantTokens lowercases, splits on whitespace, and removes
// stopwords.
func significantTokens(query string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if !stopwords[tok] {
			out = append(out, tok)
		}
	}
	return out
}
