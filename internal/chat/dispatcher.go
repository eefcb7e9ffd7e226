package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dealhunter/dealhunter/internal/catalog"
	"github.com/dealhunter/dealhunter/internal/tracking"
)

// Fixed dispatcher replies. Every user-facing failure is a complete
// sentence suitable for direct display.
const (
	replyUnknownTool = "Unknown tool"
	replyNoTracked   = "You're not tracking anything yet. Tell me a product and a target price - for example: 'Track the Samsung 65-inch TV under $900'."
)

// Dispatcher executes tool invocations against the catalog and tracker,
// rendering each outcome as a natural-language string. It holds no state
// beyond its collaborators, and it never raises to the caller: tool
// failures become user-facing sentences so the conversation continues.
type Dispatcher struct {
	catalog *catalog.Catalog
	tracker *tracking.Tracker
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(c *catalog.Catalog, t *tracking.Tracker) *Dispatcher {
	return &Dispatcher{catalog: c, tracker: t}
}

// Dispatch runs one tool call and returns the reply text. The switch over
// ToolKind is the single extension point: adding a fourth tool means a new
// case here and a new variant in tools.go.
func (d *Dispatcher) Dispatch(ctx context.Context, call ToolCall) string {
	var (
		reply string
		err   error
	)

	switch call.Kind {
	case ToolTrackProduct:
		reply, err = d.trackProduct(ctx, call.Track)
	case ToolGetRecommendations:
		reply, err = d.recommendations(ctx, call.Recommend)
	case ToolListTrackedItems:
		reply, err = d.listTracked(ctx)
	default:
		return replyUnknownTool
	}

	if err != nil {
		log.Error().Str("tool", string(call.Kind)).Err(err).Msg("tool execution failed")
		return fmt.Sprintf("I encountered an error: %v. Please try again.", err)
	}
	return reply
}

func (d *Dispatcher) trackProduct(ctx context.Context, args *TrackProductArgs) (string, error) {
	products, err := d.catalog.SearchByName(ctx, args.ProductName, catalog.DefaultLimit)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return fmt.Sprintf(
			"I couldn't find %q in our catalog, so nothing was added to your watchlist. We do have deals on TVs, headphones, laptops, and other electronics - want me to look one of those up?",
			args.ProductName), nil
	}

	product := products[0]
	item, err := d.tracker.Create(ctx, product.ID, args.TargetPrice, "")
	if err != nil {
		return "", err
	}
	if item == nil {
		return fmt.Sprintf("I found %s but couldn't add it to your watchlist just now. Please try again.", product.Name), nil
	}

	return fmt.Sprintf(
		"You got it! I'm now tracking %s for you. Current price: %s - I'll email you as soon as it drops below %s.",
		product.Name, dollars(product.CurrentPrice), dollars(args.TargetPrice)), nil
}

func (d *Dispatcher) recommendations(ctx context.Context, args *RecommendationsArgs) (string, error) {
	products, err := d.catalog.ByCategory(ctx, args.Category, args.MaxPrice, catalog.DefaultLimit)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		if args.MaxPrice > 0 {
			return fmt.Sprintf("I couldn't find anything in %s under %s. Try another category or a higher budget?", args.Category, dollars(args.MaxPrice)), nil
		}
		return fmt.Sprintf("I couldn't find anything in %s right now. Try another category?", args.Category), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I found in %s:\n", args.Category)
	for _, p := range products {
		fmt.Fprintf(&b, "%s: %s\n", p.Name, dollars(p.CurrentPrice))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (d *Dispatcher) listTracked(ctx context.Context) (string, error) {
	items, err := d.tracker.ListAll(ctx, "")
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return replyNoTracked, nil
	}

	var b strings.Builder
	b.WriteString("Here's your watchlist:\n")
	for _, item := range items {
		// Orphaned item: its product no longer resolves.
		if item.Product == nil {
			continue
		}
		fmt.Fprintf(&b, "%s: watching for %s (currently %s)\n",
			item.Product.Name, dollars(item.TargetPrice), dollars(item.Product.CurrentPrice))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func dollars(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
