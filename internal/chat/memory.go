package chat

import (
	"sync"

	"github.com/clearpathhq/beacon/internal/llm"
)

// DefaultMaxPairs is how many user/assistant pairs each session keeps.
const DefaultMaxPairs = 3

// Memory holds short per-session conversation history so follow-up
// questions carry their referents into the prompt.
type Memory struct {
	mu       sync.Mutex
	maxPairs int
	sessions map[string][]llm.Message
}

// NewMemory creates a Memory keeping at most maxPairs pairs per session.
func NewMemory(maxPairs int) *Memory {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}
	return &Memory{maxPairs: maxPairs, sessions: make(map[string][]llm.Message)}
}

// History returns a copy of the session's messages in order.
func (m *Memory) History(sessionID string) []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Message(nil), m.sessions[sessionID]...)
}

// Update appends one user/assistant pair and trims to the retention limit.
func (m *Memory) Update(sessionID, query, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID],
		llm.Message{Role: llm.RoleUser, Content: query},
		llm.Message{Role: llm.RoleAssistant, Content: response},
	)
	if max := m.maxPairs * 2; len(history) > max {
		history = history[len(history)-max:]
	}
	m.sessions[sessionID] = history
}
