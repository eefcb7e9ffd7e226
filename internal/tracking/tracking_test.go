package tracking_test

import (
	"context"
	"testing"

	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/internal/tracking"
	"github.com/dealhunter/dealhunter/pkg/models"
)

const testEmail = "alerts@example.com"

func newTestTracker(t *testing.T) (*tracking.Tracker, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	s.Seed([]models.Product{
		{ID: "p1", Name: "Samsung 65-inch TV", Category: "TV", CurrentPrice: 849.99},
		{ID: "p2", Name: "Dell XPS 15 Laptop", Category: "Laptop", CurrentPrice: 1499.00},
	})
	return tracking.New(s, testEmail), s
}

// ─── Create ──────────────────────────────────────────────────

func TestCreate(t *testing.T) {
	tr, _ := newTestTracker(t)

	item, err := tr.Create(context.Background(), "p1", 900, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item == nil {
		t.Fatal("Create() = nil, want created item")
	}
	if item.Email != testEmail {
		t.Errorf("Create().Email = %q, want default %q", item.Email, testEmail)
	}
	if item.TargetPrice != 900 {
		t.Errorf("Create().TargetPrice = %v, want 900", item.TargetPrice)
	}
	if item.ID == "" || item.CreatedAt.IsZero() {
		t.Error("Create() did not fill in ID and CreatedAt")
	}
}

func TestCreate_BelowTargetAllowed(t *testing.T) {
	tr, _ := newTestTracker(t)

	// p1 sells at 849.99, already under the 900 target. There is no
	// enforced relation between target and current price.
	item, err := tr.Create(context.Background(), "p1", 900, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item == nil {
		t.Fatal("Create() = nil, want created item even though price is already below target")
	}
}

func TestCreate_RejectedInsertIsNotAnError(t *testing.T) {
	tr, s := newTestTracker(t)

	item, err := tr.Create(context.Background(), "no-such-product", 500, "")
	if err != nil {
		t.Fatalf("Create() error = %v, want nil for a rejected insert", err)
	}
	if item != nil {
		t.Errorf("Create() = %v, want nil (not created)", item)
	}
	if got := s.CountTrackedItems(); got != 0 {
		t.Errorf("tracked items after rejected insert = %d, want 0", got)
	}
}

// ─── ListAll ─────────────────────────────────────────────────

func TestListAll_JoinsProducts(t *testing.T) {
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.Create(ctx, "p1", 900, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	items, err := tr.ListAll(ctx, "")
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListAll() returned %d items, want 1", len(items))
	}
	if items[0].Product == nil {
		t.Fatal("ListAll()[0].Product = nil, want joined product")
	}
	if items[0].Product.Name != "Samsung 65-inch TV" {
		t.Errorf("joined product name = %q, want %q", items[0].Product.Name, "Samsung 65-inch TV")
	}
}

func TestListAll_Empty(t *testing.T) {
	tr, _ := newTestTracker(t)

	items, err := tr.ListAll(context.Background(), "")
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("ListAll() = %v, want empty", items)
	}
}

// ─── ResetAll ────────────────────────────────────────────────

// orderedStore records the order of destructive store calls.
type orderedStore struct {
	store.Store
	ops []string
}

func (o *orderedStore) DeleteAlerts(ctx context.Context) error {
	o.ops = append(o.ops, "delete_alerts")
	return o.Store.DeleteAlerts(ctx)
}

func (o *orderedStore) DeleteTrackedItems(ctx context.Context) error {
	o.ops = append(o.ops, "delete_tracked_items")
	return o.Store.DeleteTrackedItems(ctx)
}

func (o *orderedStore) RestoreOriginalPrices(ctx context.Context) error {
	o.ops = append(o.ops, "restore_prices")
	return o.Store.RestoreOriginalPrices(ctx)
}

func (o *orderedStore) DeletePriceHistory(ctx context.Context) error {
	o.ops = append(o.ops, "delete_price_history")
	return o.Store.DeletePriceHistory(ctx)
}

func TestResetAll_ChildFirstOrder(t *testing.T) {
	_, mem := newTestTracker(t)
	ctx := context.Background()

	rec := &orderedStore{Store: mem}
	tr := tracking.New(rec, testEmail)

	item, err := tr.Create(ctx, "p1", 900, "")
	if err != nil || item == nil {
		t.Fatalf("Create() = %v, %v", item, err)
	}
	if err := mem.InsertAlert(ctx, &models.Alert{TrackedItemID: item.ID, OldPrice: 849.99, NewPrice: 860}); err != nil {
		t.Fatalf("InsertAlert() error = %v", err)
	}
	if err := mem.InsertPricePoint(ctx, &models.PricePoint{ProductID: "p1", Price: 860}); err != nil {
		t.Fatalf("InsertPricePoint() error = %v", err)
	}
	if err := mem.UpdateProductPrice(ctx, "p1", 860); err != nil {
		t.Fatalf("UpdateProductPrice() error = %v", err)
	}

	if err := tr.ResetAll(ctx); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}

	want := []string{"delete_alerts", "delete_tracked_items", "restore_prices", "delete_price_history"}
	if len(rec.ops) != len(want) {
		t.Fatalf("ResetAll() ops = %v, want %v", rec.ops, want)
	}
	for i := range want {
		if rec.ops[i] != want[i] {
			t.Fatalf("ResetAll() ops = %v, want %v", rec.ops, want)
		}
	}

	if mem.CountAlerts() != 0 || mem.CountTrackedItems() != 0 || mem.CountPricePoints() != 0 {
		t.Error("ResetAll() left rows behind")
	}
	p, err := mem.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if p.CurrentPrice != 849.99 {
		t.Errorf("price after reset = %v, want original 849.99", p.CurrentPrice)
	}
}
