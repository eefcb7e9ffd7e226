package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealhunter/dealhunter/pkg/models"
)

// MemoryStore implements Store with in-memory maps. Used as the zero-config
// fallback when DATABASE_URL is not set, and as the test double. The ILIKE
// pattern semantics of the Postgres store are emulated so the catalog search
// behaves identically on both.
type MemoryStore struct {
	mu           sync.RWMutex
	products     map[string]*models.Product
	trackedItems map[string]*models.TrackedItem
	alerts       map[string]*models.Alert
	priceHistory map[string]*models.PricePoint

	// lastInsert enforces strictly increasing created_at values so
	// "oldest tracked item" stays deterministic even under rapid inserts.
	lastInsert time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:     make(map[string]*models.Product),
		trackedItems: make(map[string]*models.TrackedItem),
		alerts:       make(map[string]*models.Alert),
		priceHistory: make(map[string]*models.PricePoint),
	}
}

// Seed inserts products directly, assigning IDs where missing and
// capturing original_price for later demo resets.
func (m *MemoryStore) Seed(products []models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range products {
		p := products[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if p.OriginalPrice == nil {
			orig := p.CurrentPrice
			p.OriginalPrice = &orig
		}
		m.products[p.ID] = &p
	}
}

// NewSeededMemoryStore creates a memory store preloaded with the demo
// catalog used when no database is configured.
func NewSeededMemoryStore() *MemoryStore {
	m := NewMemoryStore()
	m.Seed(DemoCatalog())
	return m
}

// DemoCatalog returns the built-in demo product rows.
func DemoCatalog() []models.Product {
	return []models.Product{
		{Name: "Samsung 65-inch TV", Category: "TV", CurrentPrice: 849.99},
		{Name: "LG 55-inch OLED TV", Category: "TV", CurrentPrice: 1199.00},
		{Name: "Sony WH-1000XM5 Headphones", Category: "Headphones", CurrentPrice: 348.00},
		{Name: "Bose QuietComfort Ultra Headphones", Category: "Headphones", CurrentPrice: 429.00},
		{Name: "Apple MacBook Air 13 M3", Category: "Laptop", CurrentPrice: 1099.00},
		{Name: "Dell XPS 15 Laptop", Category: "Laptop", CurrentPrice: 1499.00},
		{Name: "Anker 65W USB-C Charger", Category: "Electronics", CurrentPrice: 39.99},
		{Name: "Kindle Paperwhite", Category: "Electronics", CurrentPrice: 149.99},
	}
}

// ilikeMatch emulates Postgres ILIKE with % wildcards: every literal
// segment of the pattern must appear in value, in order, ignoring case.
func ilikeMatch(pattern, value string) bool {
	v := strings.ToLower(value)
	segments := strings.Split(strings.ToLower(pattern), "%")

	// Anchored start: pattern does not begin with a wildcard.
	if segments[0] != "" {
		if !strings.HasPrefix(v, segments[0]) {
			return false
		}
		v = v[len(segments[0]):]
		segments = segments[1:]
	}

	// Anchored end.
	last := ""
	if len(segments) > 0 && segments[len(segments)-1] != "" {
		last = segments[len(segments)-1]
		segments = segments[:len(segments)-1]
	}

	for _, seg := range segments {
		if seg == "" {
			continue
		}
		idx := strings.Index(v, seg)
		if idx < 0 {
			return false
		}
		v = v[idx+len(seg):]
	}

	if last != "" && !strings.HasSuffix(v, last) {
		return false
	}
	return true
}

// ── Products ────────────────────────────────────────────────

func (m *MemoryStore) SearchProducts(_ context.Context, pattern string, limit int) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Product
	for _, p := range m.productsSorted() {
		if ilikeMatch(pattern, p.Name) {
			out = append(out, *p)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MemoryStore) ProductsByCategory(_ context.Context, pattern string, maxPrice float64, limit int) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Product
	for _, p := range m.productsSorted() {
		if !ilikeMatch(pattern, p.Category) {
			continue
		}
		if maxPrice > 0 && p.CurrentPrice > maxPrice {
			continue
		}
		out = append(out, *p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UpdateProductPrice(_ context.Context, id string, price float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.CurrentPrice = price
	return nil
}

func (m *MemoryStore) RestoreOriginalPrices(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.products {
		if p.OriginalPrice != nil {
			p.CurrentPrice = *p.OriginalPrice
		}
	}
	return nil
}

// productsSorted returns products in name order so results are stable
// across runs. The Postgres store makes no such promise; callers must not
// rely on order either way.
func (m *MemoryStore) productsSorted() []*models.Product {
	out := make([]*models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// nextTimestamp returns a strictly increasing UTC timestamp. Callers must
// hold the write lock.
func (m *MemoryStore) nextTimestamp() time.Time {
	now := time.Now().UTC()
	if !now.After(m.lastInsert) {
		now = m.lastInsert.Add(time.Nanosecond)
	}
	m.lastInsert = now
	return now
}

// ── Tracked items ───────────────────────────────────────────

func (m *MemoryStore) InsertTrackedItem(_ context.Context, item *models.TrackedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[item.ProductID]; !ok {
		return ErrNotFound
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = m.nextTimestamp()
	cp := *item
	cp.Product = nil
	m.trackedItems[cp.ID] = &cp
	return nil
}

func (m *MemoryStore) ListTrackedItems(_ context.Context, email string) ([]models.TrackedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.TrackedItem
	for _, item := range m.trackedItems {
		if item.Email != email {
			continue
		}
		cp := *item
		if p, ok := m.products[item.ProductID]; ok {
			pc := *p
			cp.Product = &pc
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) DeleteTrackedItems(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trackedItems = make(map[string]*models.TrackedItem)
	return nil
}

// ── Alerts & price history ──────────────────────────────────

func (m *MemoryStore) InsertAlert(_ context.Context, alert *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.CreatedAt = time.Now().UTC()
	cp := *alert
	m.alerts[cp.ID] = &cp
	return nil
}

func (m *MemoryStore) DeleteAlerts(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = make(map[string]*models.Alert)
	return nil
}

func (m *MemoryStore) InsertPricePoint(_ context.Context, point *models.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if point.ID == "" {
		point.ID = uuid.New().String()
	}
	point.RecordedAt = time.Now().UTC()
	cp := *point
	m.priceHistory[cp.ID] = &cp
	return nil
}

func (m *MemoryStore) DeletePriceHistory(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceHistory = make(map[string]*models.PricePoint)
	return nil
}

// ── Lifecycle ───────────────────────────────────────────────

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

// CountAlerts reports the number of alert rows. Used by tests and the
// demo-reset verification.
func (m *MemoryStore) CountAlerts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.alerts)
}

// CountTrackedItems reports the number of tracked-item rows.
func (m *MemoryStore) CountTrackedItems() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trackedItems)
}

// CountPricePoints reports the number of price_history rows.
func (m *MemoryStore) CountPricePoints() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.priceHistory)
}
