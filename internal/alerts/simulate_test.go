package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/internal/tracking"
	"github.com/dealhunter/dealhunter/pkg/models"
)

// stubMailer records sends and optionally fails them.
type stubMailer struct {
	fail  bool
	sends int
}

func (m *stubMailer) SendPriceAlert(_ context.Context, to, productName string, oldPrice, newPrice, targetPrice float64, productURL string) (string, error) {
	m.sends++
	if m.fail {
		return "", errors.New("smtp on fire")
	}
	return "email_123", nil
}

func newTestSimulator(t *testing.T, mail *stubMailer) (*Simulator, *store.MemoryStore, *tracking.Tracker) {
	t.Helper()
	s := store.NewMemoryStore()
	s.Seed([]models.Product{
		{ID: "p1", Name: "Samsung 65-inch TV", Category: "TV", CurrentPrice: 850},
		{ID: "p2", Name: "Dell XPS 15 Laptop", Category: "Laptop", CurrentPrice: 1499},
	})
	tr := tracking.New(s, "alerts@example.com")
	return NewSimulator(s, tr, mail), s, tr
}

func TestSimulate_NoTrackedItems(t *testing.T) {
	sim, _, _ := newTestSimulator(t, &stubMailer{})

	_, err := sim.Simulate(context.Background(), "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Simulate() error = %v, want ErrNotFound", err)
	}
}

func TestSimulate_DropConfinedToBounds(t *testing.T) {
	sim, s, tr := newTestSimulator(t, &stubMailer{})
	ctx := context.Background()

	if _, err := tr.Create(ctx, "p1", 100, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The drop magnitude must stay in [10,50) for every random value,
	// including the extremes of the unit interval.
	for _, r := range []float64{0, 0.25, 0.5, 0.999999} {
		sim.randFloat = func() float64 { return r }

		resp, err := sim.Simulate(ctx, "")
		if err != nil {
			t.Fatalf("Simulate() error = %v", err)
		}
		if resp.NewPrice >= 100 {
			t.Errorf("rand=%v: new price %v, want strictly below target 100", r, resp.NewPrice)
		}
		if resp.NewPrice <= 50 {
			t.Errorf("rand=%v: new price %v, want strictly above 50", r, resp.NewPrice)
		}
		p, err := s.GetProduct(ctx, "p1")
		if err != nil {
			t.Fatalf("GetProduct() error = %v", err)
		}
		if p.CurrentPrice != resp.NewPrice {
			t.Errorf("persisted price %v, response price %v", p.CurrentPrice, resp.NewPrice)
		}
	}
}

func TestSimulate_PicksOldestItem(t *testing.T) {
	sim, _, tr := newTestSimulator(t, &stubMailer{})
	ctx := context.Background()

	first, err := tr.Create(ctx, "p1", 800, "")
	if err != nil || first == nil {
		t.Fatalf("Create() = %v, %v", first, err)
	}
	if _, err := tr.Create(ctx, "p2", 1400, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	resp, err := sim.Simulate(ctx, "")
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.ProductID != "p1" {
		t.Errorf("ProductID = %q, want the oldest item's product p1", resp.ProductID)
	}
	if resp.TargetPrice != 800 {
		t.Errorf("TargetPrice = %v, want 800", resp.TargetPrice)
	}
}

func TestSimulate_ByItemID(t *testing.T) {
	sim, _, tr := newTestSimulator(t, &stubMailer{})
	ctx := context.Background()

	if _, err := tr.Create(ctx, "p1", 800, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := tr.Create(ctx, "p2", 1400, "")
	if err != nil || second == nil {
		t.Fatalf("Create() = %v, %v", second, err)
	}

	resp, err := sim.Simulate(ctx, second.ID)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.ProductID != "p2" {
		t.Errorf("ProductID = %q, want p2", resp.ProductID)
	}
}

func TestSimulate_UnknownItemID(t *testing.T) {
	sim, _, tr := newTestSimulator(t, &stubMailer{})
	ctx := context.Background()

	if _, err := tr.Create(ctx, "p1", 800, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := sim.Simulate(ctx, "no-such-item")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Simulate() error = %v, want ErrNotFound", err)
	}
}

func TestSimulate_EmailFailureIsNotFatal(t *testing.T) {
	mail := &stubMailer{fail: true}
	sim, s, tr := newTestSimulator(t, mail)
	ctx := context.Background()

	if _, err := tr.Create(ctx, "p1", 800, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	resp, err := sim.Simulate(ctx, "")
	if err != nil {
		t.Fatalf("Simulate() error = %v, want success despite email failure", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.EmailSent {
		t.Error("EmailSent = true, want false")
	}
	if resp.EmailError == "" {
		t.Error("EmailError empty, want the failure surfaced")
	}
	if mail.sends != 1 {
		t.Errorf("mailer called %d times, want exactly 1 (no retries)", mail.sends)
	}
	// The alert row still lands, recording the failed send.
	if s.CountAlerts() != 1 {
		t.Errorf("alerts = %d, want 1", s.CountAlerts())
	}
}

func TestSimulate_RecordsHistoryAndAlert(t *testing.T) {
	sim, s, tr := newTestSimulator(t, &stubMailer{})
	ctx := context.Background()

	if _, err := tr.Create(ctx, "p1", 800, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	resp, err := sim.Simulate(ctx, "")
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.OldPrice != 850 {
		t.Errorf("OldPrice = %v, want the pre-drop 850", resp.OldPrice)
	}
	if !resp.EmailSent {
		t.Error("EmailSent = false, want true")
	}
	if s.CountPricePoints() != 1 {
		t.Errorf("price history rows = %d, want 1", s.CountPricePoints())
	}
	if s.CountAlerts() != 1 {
		t.Errorf("alert rows = %d, want 1", s.CountAlerts())
	}
}
