package whatsapp

import (
	"sync"

	"github.com/icsherer/Herd-Ledger/pkg/clients/anthropic"
)

// maxHistory caps the turns kept per sender.
const maxHistory = 10

// SessionManager keeps a short message history per sender so follow-ups
// like "she was treated too" can be resolved.
type SessionManager struct {
	sessions map[string][]anthropic.Message
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string][]anthropic.Message),
	}
}

// History returns a copy of the sender's recent turns, oldest first.
func (sm *SessionManager) History(userID string) []anthropic.Message {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return append([]anthropic.Message(nil), sm.sessions[userID]...)
}

// Record appends one exchange and drops the oldest turns past the cap.
func (sm *SessionManager) Record(userID, input, reply string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	h := append(sm.sessions[userID],
		anthropic.Message{Role: "user", Content: input},
		anthropic.Message{Role: "assistant", Content: reply},
	)
	if len(h) > maxHistory {
		h = append([]anthropic.Message(nil), h[len(h)-maxHistory:]...)
	}
	sm.sessions[userID] = h
}

// ClearSession removes a user's session.
func (sm *SessionManager) ClearSession(userID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, userID)
}
