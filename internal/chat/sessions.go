package chat

import (
	"sync"

	"github.com/dealhunter/dealhunter/pkg/models"
)

// maxHistoryTurns bounds how many prior messages a session keeps. Older
// turns fall off the front.
const maxHistoryTurns = 20

// SessionStore is a thread-safe in-memory store of per-session
// conversation history, keyed by the caller-supplied session_id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.ChatMessage
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string][]models.ChatMessage)}
}

// History returns a copy of the session's prior turns, oldest first.
// Unknown sessions yield an empty history.
func (s *SessionStore) History(sessionID string) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.sessions[sessionID]
	out := make([]models.ChatMessage, len(history))
	copy(out, history)
	return out
}

// Append adds turns to a session, trimming to the history bound.
func (s *SessionStore) Append(sessionID string, turns ...models.ChatMessage) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[sessionID], turns...)
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}
	s.sessions[sessionID] = history
}

// Reset drops a session's history.
func (s *SessionStore) Reset(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
