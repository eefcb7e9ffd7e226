package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/dealhunter/dealhunter/internal/catalog"
	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/internal/tracking"
	"github.com/dealhunter/dealhunter/pkg/models"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	s.Seed([]models.Product{
		{ID: "p1", Name: "Samsung 65-inch TV", Category: "TV", CurrentPrice: 850},
		{ID: "p2", Name: "Sony WH-1000XM5 Headphones", Category: "Headphones", CurrentPrice: 348},
	})
	cat := catalog.New(s)
	tr := tracking.New(s, "alerts@example.com")
	return NewDispatcher(cat, tr), s
}

// ─── track_product ───────────────────────────────────────────

func TestDispatch_TrackProduct(t *testing.T) {
	d, s := newTestDispatcher(t)

	// Current price 850 is already below the 900 target; tracking must
	// still succeed.
	reply := d.Dispatch(context.Background(), ToolCall{
		Kind:  ToolTrackProduct,
		Track: &TrackProductArgs{ProductName: "Samsung 65 inch TV", TargetPrice: 900},
	})

	if !strings.Contains(reply, "$850.00") {
		t.Errorf("reply %q does not name the current price $850.00", reply)
	}
	if !strings.Contains(reply, "$900.00") {
		t.Errorf("reply %q does not name the target price $900.00", reply)
	}
	if !strings.Contains(reply, "Samsung 65-inch TV") {
		t.Errorf("reply %q does not name the product", reply)
	}
	if got := s.CountTrackedItems(); got != 1 {
		t.Errorf("tracked items = %d, want 1", got)
	}
}

func TestDispatch_TrackProduct_NotFound(t *testing.T) {
	d, s := newTestDispatcher(t)

	reply := d.Dispatch(context.Background(), ToolCall{
		Kind:  ToolTrackProduct,
		Track: &TrackProductArgs{ProductName: "flux capacitor", TargetPrice: 50},
	})

	if !strings.Contains(reply, "couldn't find") {
		t.Errorf("reply %q, want a not-found message", reply)
	}
	if got := s.CountTrackedItems(); got != 0 {
		t.Errorf("tracked items after failed lookup = %d, want 0 (create must not be called)", got)
	}
}

// ─── get_recommendations ─────────────────────────────────────

func TestDispatch_Recommendations(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Dispatch(context.Background(), ToolCall{
		Kind:      ToolGetRecommendations,
		Recommend: &RecommendationsArgs{Category: "Headphones"},
	})

	if !strings.Contains(reply, "Sony WH-1000XM5 Headphones: $348.00") {
		t.Errorf("reply %q missing 'name: $price' line", reply)
	}
}

func TestDispatch_Recommendations_EmptyNamesCeiling(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Dispatch(context.Background(), ToolCall{
		Kind:      ToolGetRecommendations,
		Recommend: &RecommendationsArgs{Category: "Headphones", MaxPrice: 10},
	})

	if !strings.Contains(reply, "$10.00") {
		t.Errorf("reply %q, want the price ceiling named", reply)
	}
}

// ─── list_tracked_items ──────────────────────────────────────

func TestDispatch_ListTracked_EmptyOnboarding(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Dispatch(context.Background(), ToolCall{Kind: ToolListTrackedItems})

	if reply != replyNoTracked {
		t.Errorf("reply = %q, want the fixed onboarding hint", reply)
	}
}

func TestDispatch_ListTracked(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	d.Dispatch(ctx, ToolCall{
		Kind:  ToolTrackProduct,
		Track: &TrackProductArgs{ProductName: "Sony Headphones", TargetPrice: 300},
	})

	reply := d.Dispatch(ctx, ToolCall{Kind: ToolListTrackedItems})

	if !strings.Contains(reply, "watching for $300.00 (currently $348.00)") {
		t.Errorf("reply %q missing watch line", reply)
	}
}

// ─── failure handling ────────────────────────────────────────

func TestDispatch_UnknownTool(t *testing.T) {
	d, _ := newTestDispatcher(t)

	reply := d.Dispatch(context.Background(), ToolCall{Kind: ToolKind("book_flight")})

	if reply != replyUnknownTool {
		t.Errorf("reply = %q, want %q", reply, replyUnknownTool)
	}
}

// failingProductStore reports the store as down for every call.
type failingProductStore struct{ store.Store }

func (failingProductStore) SearchProducts(context.Context, string, int) ([]models.Product, error) {
	return nil, store.ErrUnavailable
}

func TestDispatch_ToolErrorBecomesSentence(t *testing.T) {
	s := store.NewMemoryStore()
	cat := catalog.New(failingProductStore{Store: s})
	tr := tracking.New(s, "alerts@example.com")
	d := NewDispatcher(cat, tr)

	reply := d.Dispatch(context.Background(), ToolCall{
		Kind:  ToolTrackProduct,
		Track: &TrackProductArgs{ProductName: "anything", TargetPrice: 10},
	})

	if !strings.HasPrefix(reply, "I encountered an error:") {
		t.Errorf("reply = %q, want user-facing error sentence", reply)
	}
	if !strings.HasSuffix(reply, "Please try again.") {
		t.Errorf("reply = %q, want retry suffix", reply)
	}
}
