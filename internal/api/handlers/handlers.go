// Package handlers implements the HTTP handlers for the DealHunter
// backend: the chat endpoints (streaming and sync), the product and
// tracked-item reads, the price-drop simulation, and the demo reset.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/dealhunter/dealhunter/internal/alerts"
	"github.com/dealhunter/dealhunter/internal/catalog"
	"github.com/dealhunter/dealhunter/internal/chat"
	"github.com/dealhunter/dealhunter/internal/store"
	"github.com/dealhunter/dealhunter/internal/tracking"
	"github.com/dealhunter/dealhunter/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Catalog   *catalog.Catalog
	Tracker   *tracking.Tracker
	Chat      *chat.Service
	Simulator *alerts.Simulator
}

// New creates a Handlers instance with all dependencies.
func New(c *catalog.Catalog, t *tracking.Tracker, cs *chat.Service, sim *alerts.Simulator) *Handlers {
	return &Handlers{Catalog: c, Tracker: t, Chat: cs, Simulator: sim}
}

// ── Chat ─────────────────────────────────────────────────────

// Chat handles POST /api/chat: one conversational turn delivered as a
// server-sent event stream. Each frame is a JSON object with a "type"
// discriminator in {tool, text, done, error}.
func (h *Handlers) ChatStream(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Disable nginx buffering so chunks reach the client immediately.
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range h.Chat.StreamTurn(r.Context(), req.Message, req.SessionID) {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Msg("encode stream event")
			return
		}
		if _, err := w.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
			// Client went away; the producer stops on context cancel.
			return
		}
		flusher.Flush()
	}
}

// ChatSync handles POST /api/chat/sync: the same turn, returned as a
// single JSON object.
func (h *Handlers) ChatSync(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Chat.SyncTurn(r.Context(), req.Message, req.SessionID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ── Products ─────────────────────────────────────────────────

// ListProducts handles GET /api/products?category=&max_price=.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	maxPrice := 0.0
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "max_price must be a number")
			return
		}
		maxPrice = parsed
	}

	products, err := h.Catalog.ByCategory(r.Context(), category, maxPrice, catalog.DefaultLimit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// ListTracked handles GET /api/products/tracked.
func (h *Handlers) ListTracked(w http.ResponseWriter, r *http.Request) {
	items, err := h.Tracker.ListAll(r.Context(), "")
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.TrackedItem{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tracked_items": items})
}

// ── Alerts & demo ────────────────────────────────────────────

// SimulateAlert handles POST /api/alerts/simulate. The body is optional:
// {item_id} pins a tracked item, otherwise the oldest one is used.
func (h *Handlers) SimulateAlert(w http.ResponseWriter, r *http.Request) {
	var req models.SimulateRequest
	if r.Body != nil {
		// Missing or empty bodies are fine; only malformed JSON is rejected.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	resp, err := h.Simulator.Simulate(r.Context(), req.ItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "No tracked items found")
			return
		}
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// ResetDemo handles POST /api/demo/reset.
func (h *Handlers) ResetDemo(w http.ResponseWriter, r *http.Request) {
	if err := h.Tracker.ResetAll(r.Context()); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Demo reset complete",
	})
}

// ── Helpers ──────────────────────────────────────────────────

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps the store error taxonomy onto HTTP statuses:
// unavailable → 503, not found → 404, anything else → 500.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "The product database is currently unavailable. Please try again shortly.")
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
