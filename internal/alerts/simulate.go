// Package alerts implements the demo price-drop simulation: pick a tracked
// item, push its product's price below the target, record history and an
// alert row, and email the owner.
package alerts

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/internal/tracking"
	"github.com/dealhunter/dealhunter/pkg/models"
)

// Drop magnitude bounds in currency units: the simulated price lands
// between 10 (inclusive) and 50 (exclusive) below the target.
const (
	minDrop = 10.0
	dropSpan = 40.0
)

// AlertMailer is the slice of the mailer the simulator needs.
type AlertMailer interface {
	SendPriceAlert(ctx context.Context, to, productName string, oldPrice, newPrice, targetPrice float64, productURL string) (string, error)
}

// Simulator produces synthetic price drops for demonstration, bypassing
// any real price feed.
type Simulator struct {
	store   store.Store
	tracker *tracking.Tracker
	mailer  AlertMailer

	// randFloat returns a value in [0,1). Injectable for tests.
	randFloat func() float64
}

// NewSimulator creates a simulator.
func NewSimulator(s store.Store, t *tracking.Tracker, m AlertMailer) *Simulator {
	return &Simulator{
		store:     s,
		tracker:   t,
		mailer:    m,
		randFloat: rand.Float64,
	}
}

// Simulate drops the price of one tracked item's product to a random value
// in [10,50) below the item's target.
//
// itemID selects a specific tracked item; empty picks the oldest one
// (tracked items are listed by creation time, so "first" is
// deterministic). Returns store.ErrNotFound when nothing is tracked or the
// requested item does not exist.
//
// The email send is attempted once and never fails the simulation; its
// outcome is reported on the response and recorded on the alert row.
func (s *Simulator) Simulate(ctx context.Context, itemID string) (*models.SimulateResponse, error) {
	items, err := s.tracker.ListAll(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no tracked items: %w", store.ErrNotFound)
	}

	item := pickItem(items, itemID)
	if item == nil {
		return nil, fmt.Errorf("tracked item %s: %w", itemID, store.ErrNotFound)
	}
	if item.Product == nil {
		return nil, fmt.Errorf("tracked item %s references a missing product: %w", item.ID, store.ErrNotFound)
	}

	oldPrice := item.Product.CurrentPrice
	drop := minDrop + s.randFloat()*dropSpan
	newPrice := item.TargetPrice - drop

	if err := s.store.UpdateProductPrice(ctx, item.ProductID, newPrice); err != nil {
		return nil, fmt.Errorf("update price: %w", err)
	}
	if err := s.store.InsertPricePoint(ctx, &models.PricePoint{ProductID: item.ProductID, Price: newPrice}); err != nil {
		return nil, fmt.Errorf("record price history: %w", err)
	}

	// Email is best-effort; record the outcome either way.
	emailSent := false
	emailErr := ""
	if _, err := s.mailer.SendPriceAlert(ctx, item.Email, item.Product.Name, oldPrice, newPrice, item.TargetPrice, item.Product.ImageURL); err != nil {
		emailErr = err.Error()
		log.Warn().Str("item_id", item.ID).Err(err).Msg("alert email failed")
	} else {
		emailSent = true
	}

	alert := &models.Alert{
		TrackedItemID: item.ID,
		OldPrice:      oldPrice,
		NewPrice:      newPrice,
		EmailSent:     emailSent,
	}
	if err := s.store.InsertAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("record alert: %w", err)
	}

	log.Info().
		Str("item_id", item.ID).
		Str("product", item.Product.Name).
		Float64("old_price", oldPrice).
		Float64("new_price", newPrice).
		Bool("email_sent", emailSent).
		Msg("price drop simulated")

	return &models.SimulateResponse{
		Success:     true,
		Message:     fmt.Sprintf("Price dropped to $%.2f!", newPrice),
		ProductID:   item.ProductID,
		OldPrice:    oldPrice,
		NewPrice:    newPrice,
		TargetPrice: item.TargetPrice,
		EmailSent:   emailSent,
		EmailError:  emailErr,
	}, nil
}

// pickItem selects by ID, or the first (oldest) item when id is empty.
func pickItem(items []models.TrackedItem, id string) *models.TrackedItem {
	if id == "" {
		return &items[0]
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
