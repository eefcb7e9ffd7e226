// Package tracking manages tracked-item records: creating watches,
// listing them with their products joined in, and the ordered demo reset.
package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/pkg/models"
)

// Tracker provides tracked-item operations for a single owner email.
type Tracker struct {
	store        store.Store
	defaultEmail string
}

// New creates a tracker. defaultEmail is the owner used when a call does
// not name one (the system currently assumes a single fixed owner).
func New(s store.Store, defaultEmail string) *Tracker {
	return &Tracker{store: s, defaultEmail: defaultEmail}
}

// DefaultEmail returns the configured owner address.
func (t *Tracker) DefaultEmail() string { return t.defaultEmail }

// Create adds a watch on a product. A nil result with nil error means the
// store rejected the insert (e.g. the product does not exist); callers
// must treat that as "not created", not as a failure to propagate.
func (t *Tracker) Create(ctx context.Context, productID string, targetPrice float64, email string) (*models.TrackedItem, error) {
	if email == "" {
		email = t.defaultEmail
	}
	item := &models.TrackedItem{
		ProductID:   productID,
		TargetPrice: targetPrice,
		Email:       email,
	}
	if err := t.store.InsertTrackedItem(ctx, item); err != nil {
		if isRejection(err) {
			log.Warn().Str("product_id", productID).Err(err).Msg("tracked item insert rejected")
			return nil, nil
		}
		return nil, fmt.Errorf("insert tracked item: %w", err)
	}
	return item, nil
}

// isRejection separates "the store refused this row" from "the store is
// broken". Connectivity problems still surface as errors.
func isRejection(err error) bool {
	return err != nil && !errors.Is(err, store.ErrUnavailable)
}

// ListAll returns every tracked item for the email (default owner when
// empty), join-expanded with products, ordered by creation time. Items
// whose product no longer resolves carry a nil Product; consumers must
// guard accordingly.
func (t *Tracker) ListAll(ctx context.Context, email string) ([]models.TrackedItem, error) {
	if email == "" {
		email = t.defaultEmail
	}
	items, err := t.store.ListTrackedItems(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list tracked items: %w", err)
	}
	return items, nil
}

// ResetAll restores the demo to its initial state. The order is a
// correctness requirement, not a style choice: alerts reference tracked
// items, so children must be deleted first.
//
//  1. delete alerts
//  2. delete tracked items
//  3. restore every product's current_price from original_price
//  4. clear price history
func (t *Tracker) ResetAll(ctx context.Context) error {
	if err := t.store.DeleteAlerts(ctx); err != nil {
		return fmt.Errorf("delete alerts: %w", err)
	}
	if err := t.store.DeleteTrackedItems(ctx); err != nil {
		return fmt.Errorf("delete tracked items: %w", err)
	}
	if err := t.store.RestoreOriginalPrices(ctx); err != nil {
		return fmt.Errorf("restore prices: %w", err)
	}
	if err := t.store.DeletePriceHistory(ctx); err != nil {
		return fmt.Errorf("clear price history: %w", err)
	}
	log.Info().Msg("demo reset complete")
	return nil
}
