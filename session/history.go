package session

import (
	"fmt"
	"sync"
	"time"
)

// Message roles. The wrapper API has exactly two speakers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in the conversation
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ProjectID string    `json:"project_id,omitempty"` // Set on assistant messages when the server reports one
	Timestamp time.Time `json:"timestamp"`
}

// History maintains the in-memory conversation of one session. It is
// display state for the REPL; the durable record lives in the transcript
// store.
type History struct {
	messages []Message
	maxTurns int // Maximum number of turns to keep (0 = unlimited)
	mu       sync.RWMutex
}

// NewHistory creates a new conversation history.
// maxTurns is the number of prompt/reply exchanges to keep; 0 keeps everything.
func NewHistory(maxTurns int) *History {
	return &History{
		messages: make([]Message, 0),
		maxTurns: maxTurns,
	}
}

// AddExchange records one completed prompt/reply pair.
func (h *History) AddExchange(prompt, reply, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.messages = append(h.messages,
		Message{Role: RoleUser, Content: prompt, Timestamp: now},
		Message{Role: RoleAssistant, Content: reply, ProjectID: projectID, Timestamp: now},
	)

	// Each turn = user + assistant message, so maxTurns * 2
	if h.maxTurns > 0 {
		maxMessages := h.maxTurns * 2
		if len(h.messages) > maxMessages {
			h.messages = h.messages[len(h.messages)-maxMessages:]
		}
	}
}

// GetMessages returns a copy of the conversation so far
func (h *History) GetMessages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// GetTurnCount returns the number of completed exchanges
func (h *History) GetTurnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages) / 2
}

// GetLastReply returns the most recent assistant message, or empty string if none
func (h *History) GetLastReply() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := len(h.messages) - 1; i >= 0; i-- {
		if h.messages[i].Role == RoleAssistant {
			return h.messages[i].Content
		}
	}
	return ""
}

// Clear removes all messages from the history
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

// IsEmpty returns true if there are no messages in history
func (h *History) IsEmpty() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages) == 0
}

// GetSummary returns a brief summary of the conversation history
func (h *History) GetSummary() string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.messages) == 0 {
		return "No conversation history"
	}

	return fmt.Sprintf("%d turns (%d messages), started %s",
		len(h.messages)/2, len(h.messages), h.messages[0].Timestamp.Format("15:04:05"))
}
