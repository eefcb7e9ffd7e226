package chat

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

// ToolKind names one of the closed set of actions the model may invoke.
type ToolKind string

const (
	ToolTrackProduct       ToolKind = "track_product"
	ToolGetRecommendations ToolKind = "get_recommendations"
	ToolListTrackedItems   ToolKind = "list_tracked_items"
)

// TrackProductArgs are the arguments of a track_product invocation.
type TrackProductArgs struct {
	ProductName string  `json:"product_name"`
	TargetPrice float64 `json:"target_price"`
}

// RecommendationsArgs are the arguments of a get_recommendations
// invocation. MaxPrice zero means no ceiling.
type RecommendationsArgs struct {
	Category string  `json:"category"`
	MaxPrice float64 `json:"max_price,omitempty"`
}

// ToolCall is a decoded tool invocation. Kind selects which of the typed
// argument fields is set: Track for track_product, Recommend for
// get_recommendations, neither for list_tracked_items. An unrecognized
// Kind carries no arguments and is answered by the dispatcher's unknown-
// tool reply, never an error.
type ToolCall struct {
	ID        string
	Kind      ToolKind
	Track     *TrackProductArgs
	Recommend *RecommendationsArgs
}

// decodeToolCall parses one raw tool invocation from the model. A payload
// that does not decode is a fatal-to-the-turn error: arguments are never
// silently defaulted.
func decodeToolCall(id, name, rawArgs string) (ToolCall, error) {
	call := ToolCall{ID: id, Kind: ToolKind(name)}

	switch call.Kind {
	case ToolTrackProduct:
		var args TrackProductArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return ToolCall{}, fmt.Errorf("decode %s arguments: %w", name, err)
		}
		call.Track = &args
	case ToolGetRecommendations:
		var args RecommendationsArgs
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return ToolCall{}, fmt.Errorf("decode %s arguments: %w", name, err)
		}
		call.Recommend = &args
	case ToolListTrackedItems:
		// No arguments.
	default:
		// Unknown tool names flow through to the dispatcher, which
		// answers with a fixed string.
	}
	return call, nil
}

// toolDefinitions is the fixed schema advertised to the model.
func toolDefinitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        string(ToolTrackProduct),
				Description: "Add a product to the user's watchlist with a target price. Call this when user wants to track a product price.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"product_name": {
							Type:        jsonschema.String,
							Description: "The name of the product to track (e.g., 'Samsung 65 inch TV', 'Sony WH-1000XM5 Headphones')",
						},
						"target_price": {
							Type:        jsonschema.Number,
							Description: "The target price in USD. Alert when price drops below this.",
						},
					},
					Required: []string{"product_name", "target_price"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        string(ToolGetRecommendations),
				Description: "Get product recommendations by category and max price. Call this when user asks for deals or recommendations.",
				Parameters: jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"category": {
							Type:        jsonschema.String,
							Description: "Product category (e.g., 'TV', 'Headphones', 'Laptop', 'Electronics')",
						},
						"max_price": {
							Type:        jsonschema.Number,
							Description: "Maximum price in USD for recommendations",
						},
					},
					Required: []string{"category"},
				},
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        string(ToolListTrackedItems),
				Description: "List all products the user is currently tracking. Call this when user asks what they're tracking.",
				Parameters: jsonschema.Definition{
					Type:       jsonschema.Object,
					Properties: map[string]jsonschema.Definition{},
				},
			},
		},
	}
}
