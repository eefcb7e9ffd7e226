package chat

import (
	"context"
	"strings"

	"github.com/dealhunter/dealhunter/pkg/models"
)

// Service glues the engine, dispatcher, and session history together for
// the HTTP layer: one conversational turn in, either an event stream or a
// single response out.
type Service struct {
	engine     *Engine
	dispatcher *Dispatcher
	sessions   *SessionStore
}

// NewService creates the chat service.
func NewService(engine *Engine, dispatcher *Dispatcher, sessions *SessionStore) *Service {
	return &Service{engine: engine, dispatcher: dispatcher, sessions: sessions}
}

// StreamTurn runs a turn and returns its events on a channel fed by a
// single producer goroutine. The sequence is finite, non-restartable, and
// consumed exactly once by the transport layer.
//
// Ordering: for each tool call, in the order the model returned them, a
// "tool" event then one "text" event per word of that tool's reply; with
// no tool calls, the plain content is chunked the same way. A successful
// stream ends with exactly one "done" event. A failed turn ends with an
// "error" event instead — error is the alternate terminal, no "done"
// follows it. Tools run strictly sequentially; there is no parallel
// fan-out.
func (s *Service) StreamTurn(ctx context.Context, message, sessionID string) <-chan models.StreamEvent {
	events := make(chan models.StreamEvent)

	go func() {
		defer close(events)

		emit := func(ev models.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		history := s.sessions.History(sessionID)
		result, err := s.engine.Process(ctx, message, sessionID, history)
		if err != nil {
			emit(models.StreamEvent{Type: models.EventError, Message: err.Error()})
			return
		}

		var transcript strings.Builder
		if len(result.ToolCalls) > 0 {
			for _, call := range result.ToolCalls {
				if !emit(models.StreamEvent{Type: models.EventTool, Name: string(call.Kind)}) {
					return
				}
				reply := s.dispatcher.Dispatch(ctx, call)
				transcript.WriteString(reply)
				for _, chunk := range chunkWords(reply) {
					if !emit(models.StreamEvent{Type: models.EventText, Content: chunk}) {
						return
					}
				}
			}
		} else {
			transcript.WriteString(result.Content)
			for _, chunk := range chunkWords(result.Content) {
				if !emit(models.StreamEvent{Type: models.EventText, Content: chunk}) {
					return
				}
			}
		}

		if emit(models.StreamEvent{Type: models.EventDone}) {
			s.sessions.Append(sessionID,
				models.ChatMessage{Role: "user", Content: message},
				models.ChatMessage{Role: "assistant", Content: transcript.String()},
			)
		}
	}()

	return events
}

// SyncTurn runs a turn and returns the complete response at once. With
// tool calls present the first tool's reply becomes the response body,
// mirroring the streaming endpoint's transcript.
func (s *Service) SyncTurn(ctx context.Context, message, sessionID string) (models.ChatSyncResponse, error) {
	history := s.sessions.History(sessionID)
	result, err := s.engine.Process(ctx, message, sessionID, history)
	if err != nil {
		return models.ChatSyncResponse{}, err
	}

	if len(result.ToolCalls) == 0 {
		s.sessions.Append(sessionID,
			models.ChatMessage{Role: "user", Content: message},
			models.ChatMessage{Role: "assistant", Content: result.Content},
		)
		return models.ChatSyncResponse{Response: result.Content}, nil
	}

	type toolCallSummary struct {
		Name   string `json:"name"`
		Result string `json:"result"`
	}
	var summaries []toolCallSummary
	for _, call := range result.ToolCalls {
		summaries = append(summaries, toolCallSummary{
			Name:   string(call.Kind),
			Result: s.dispatcher.Dispatch(ctx, call),
		})
	}

	response := summaries[0].Result
	s.sessions.Append(sessionID,
		models.ChatMessage{Role: "user", Content: message},
		models.ChatMessage{Role: "assistant", Content: response},
	)
	return models.ChatSyncResponse{Response: response, ToolCalls: summaries}, nil
}

// chunkWords splits text into word chunks for incremental delivery. Every
// chunk keeps a trailing space except the last one.
func chunkWords(text string) []string {
	words := strings.Fields(text)
	chunks := make([]string, 0, len(words))
	for i, w := range words {
		if i < len(words)-1 {
			chunks = append(chunks, w+" ")
		} else {
			chunks = append(chunks, w)
		}
	}
	return chunks
}
