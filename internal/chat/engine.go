// Package chat implements the conversational core: the engine that turns a
// user utterance into text or tool invocations via the OpenAI API, the
// dispatcher that executes those invocations against the catalog and
// tracker, and the presenter that streams the outcome as discrete events.
package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/dealhunter/dealhunter/internal/config"
	"github.com/dealhunter/dealhunter/pkg/models"
)

// systemPrompt pins the assistant to the product-deal domain.
const systemPrompt = `You are DealHunter, a product deal tracking assistant.

RULES:
- You help users track product prices and get recommendations.
- You do NOT track flights or travel - politely redirect to product deals.
- You NEVER hallucinate prices - use tools to get real data.
- You are concise - max 2-3 sentences per response.
- If you can't understand the request, ask for clarification.

When user wants to track something, extract:
- Product name (as specific as possible)
- Target price (if mentioned, otherwise ask)

Available actions:
- Track a product at a target price
- Get product recommendations by category
- List currently tracked items`

// fallbackReply is shown when the model call itself fails.
const fallbackReply = "I'm having trouble processing your request. Please try again."

// completionClient is the slice of the OpenAI client the engine needs.
// *openai.Client satisfies it; tests substitute a stub.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Result is the outcome of one conversational turn. When the model call
// fails, Content carries the fallback reply and Err records the underlying
// cause separately from the user-visible text.
type Result struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	Err          error
}

// Engine turns user messages into text or tool invocations.
type Engine struct {
	client      completionClient
	model       string
	maxTokens   int
	temperature float32
}

// NewEngine creates an engine backed by the OpenAI API.
func NewEngine(cfg config.OpenAIConfig) *Engine {
	return &Engine{
		client:      openai.NewClient(cfg.APIKey),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// NewEngineWithClient creates an engine with an explicit completion
// client. Used by tests.
func NewEngineWithClient(client completionClient, model string) *Engine {
	return &Engine{client: client, model: model, maxTokens: 500, temperature: 0.7}
}

// Process runs one turn: system prompt + history + user message against
// the model with the fixed tool schema, tool choice left to the model.
//
// A failed model call is not an error: it yields the fallback reply with
// the cause recorded on Result.Err. A tool invocation whose arguments do
// not decode IS an error — the turn fails and the caller surfaces it.
func (e *Engine) Process(ctx context.Context, message, sessionID string, history []models.ChatMessage) (Result, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Tools:       toolDefinitions(),
		ToolChoice:  "auto",
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		log.Error().Str("session_id", sessionID).Err(err).Msg("model call failed")
		return Result{Content: fallbackReply, Err: err}, nil
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("model returned no choices")
		log.Error().Str("session_id", sessionID).Err(err).Msg("model call failed")
		return Result{Content: fallbackReply, Err: err}, nil
	}

	choice := resp.Choices[0]
	result := Result{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
	}

	for _, tc := range choice.Message.ToolCalls {
		call, err := decodeToolCall(tc.ID, tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			return Result{}, err
		}
		result.ToolCalls = append(result.ToolCalls, call)
	}

	log.Debug().
		Str("session_id", sessionID).
		Int("tool_calls", len(result.ToolCalls)).
		Str("finish_reason", result.FinishReason).
		Msg("turn processed")

	return result, nil
}
