// Package store provides the storage interface and implementations for the
// DealHunter backend. Production runs on PostgreSQL (pgx); local dev and
// tests use the in-memory store with seeded demo data.
package store

import (
	"context"
	"errors"

	"github.com/dealhunter/dealhunter/pkg/models"
)

// ErrUnavailable signals a connectivity or credentials problem with the
// backing store. Handlers map it to 503, distinct from not-found and from
// generic failures.
var ErrUnavailable = errors.New("store unavailable")

// ErrNotFound signals that a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the storage interface all services depend on, making it easy to
// swap between in-memory (tests, local dev) and PostgreSQL (production).
type Store interface {
	ProductStore
	TrackedItemStore
	AlertStore

	// Ping checks if the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}

// ── Products ────────────────────────────────────────────────

type ProductStore interface {
	// SearchProducts returns products whose name matches the ILIKE-style
	// pattern (case-insensitive, % wildcards), at most limit rows.
	SearchProducts(ctx context.Context, pattern string, limit int) ([]models.Product, error)

	// ProductsByCategory matches category as a case-insensitive substring
	// pattern. maxPrice <= 0 means no price ceiling. Row order is
	// store-defined.
	ProductsByCategory(ctx context.Context, pattern string, maxPrice float64, limit int) ([]models.Product, error)

	// GetProduct returns ErrNotFound when no row matches.
	GetProduct(ctx context.Context, id string) (*models.Product, error)

	// UpdateProductPrice sets current_price for one product.
	UpdateProductPrice(ctx context.Context, id string, price float64) error

	// RestoreOriginalPrices resets current_price to original_price for
	// every product that has original_price set.
	RestoreOriginalPrices(ctx context.Context) error
}

// ── Tracked items ───────────────────────────────────────────

type TrackedItemStore interface {
	// InsertTrackedItem persists the item and fills in its ID and
	// CreatedAt. A rejected insert (e.g. unknown product) returns an error.
	InsertTrackedItem(ctx context.Context, item *models.TrackedItem) error

	// ListTrackedItems returns all items for the email, join-expanded with
	// their product (nil Product when the reference no longer resolves),
	// ordered by created_at ascending.
	ListTrackedItems(ctx context.Context, email string) ([]models.TrackedItem, error)

	// DeleteTrackedItems removes every tracked item.
	DeleteTrackedItems(ctx context.Context) error
}

// ── Alerts & price history ──────────────────────────────────

type AlertStore interface {
	// InsertAlert appends an alert row; alerts are never updated.
	InsertAlert(ctx context.Context, alert *models.Alert) error

	// DeleteAlerts removes every alert. Must be called before
	// DeleteTrackedItems — alerts reference tracked items.
	DeleteAlerts(ctx context.Context) error

	// InsertPricePoint appends a price_history row.
	InsertPricePoint(ctx context.Context, point *models.PricePoint) error

	// DeletePriceHistory removes every price_history row.
	DeletePriceHistory(ctx context.Context) error
}
