// Package models defines the core data types shared across the DealHunter
// backend: catalog products, tracked items, price alerts, and the chat
// request/response and stream-event shapes exchanged with the frontend.
package models

import "time"

// ── Catalog ──────────────────────────────────────────────────

// Product is a catalog row. Products are seeded externally; the backend
// only mutates current_price (price-drop simulation and demo reset).
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	CurrentPrice  float64  `json:"current_price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
}

// TrackedItem is a user's standing request to be alerted when a product's
// price falls to or below TargetPrice. Product is join-expanded on reads
// and may be nil when the referenced product no longer resolves.
type TrackedItem struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	TargetPrice float64   `json:"target_price"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	Product     *Product  `json:"product,omitempty"`
}

// Alert records one simulated price drop against a tracked item.
// Append-only: rows are never mutated after insert.
type Alert struct {
	ID            string    `json:"id"`
	TrackedItemID string    `json:"tracked_item_id"`
	OldPrice      float64   `json:"old_price"`
	NewPrice      float64   `json:"new_price"`
	EmailSent     bool      `json:"email_sent"`
	CreatedAt     time.Time `json:"created_at"`
}

// PricePoint is one price_history row for a product.
type PricePoint struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ── Chat wire types ──────────────────────────────────────────

// ChatRequest is the body of POST /api/chat and /api/chat/sync.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatSyncResponse is the body returned by POST /api/chat/sync.
type ChatSyncResponse struct {
	Response  string      `json:"response"`
	ToolCalls interface{} `json:"tool_calls,omitempty"`
}

// ChatMessage is one turn of conversation history passed to the model.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ── Stream events ────────────────────────────────────────────

// StreamEventType discriminates the events on the chat SSE stream.
type StreamEventType string

const (
	EventTool  StreamEventType = "tool"
	EventText  StreamEventType = "text"
	EventDone  StreamEventType = "done"
	EventError StreamEventType = "error"
)

// StreamEvent is one frame of the chat event stream. Exactly one of the
// type-specific fields is populated, matching the Type discriminator:
// Name for tool, Content for text, Message for error.
type StreamEvent struct {
	Type    StreamEventType `json:"type"`
	Name    string          `json:"name,omitempty"`
	Content string          `json:"content,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ── Alert simulation ─────────────────────────────────────────

// SimulateRequest optionally pins the tracked item to drop the price on.
type SimulateRequest struct {
	ItemID string `json:"item_id,omitempty"`
}

// SimulateResponse summarizes a simulated price drop.
type SimulateResponse struct {
	Success     bool    `json:"success"`
	Message     string  `json:"message"`
	ProductID   string  `json:"product_id"`
	OldPrice    float64 `json:"old_price"`
	NewPrice    float64 `json:"new_price"`
	TargetPrice float64 `json:"target_price"`
	EmailSent   bool    `json:"email_sent"`
	EmailError  string  `json:"email_error,omitempty"`
}
