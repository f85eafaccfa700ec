// Package assist keeps the conversation with the coding assistant and talks
// to the chat model.
package assist

import "github.com/cloudwego/eino/schema"

// DefaultWindow is the maximum number of turns sent to the model, system
// turn included.
const DefaultWindow = 10

// Turn is one message of the conversation.
type Turn struct {
	Role    schema.RoleType `json:"role"`
	Content string          `json:"content"`
}

// History is a bounded, ordered conversation. At most one system turn
// exists and it is always first. When the window overflows, the oldest
// non-system turns are evicted; the system turn never is.
//
// History is not safe for concurrent use; Conversation serializes access.
type History struct {
	window int
	turns  []Turn
}

// NewHistory creates a History holding at most window turns. window must
// leave room for the system turn and one more.
func NewHistory(window int) *History {
	if window < 2 {
		window = DefaultWindow
	}
	return &History{window: window}
}

// SetSystem inserts the system turn, or replaces its content if present.
func (h *History) SetSystem(content string) {
	if h.hasSystem() {
		h.turns[0].Content = content
		return
	}
	h.turns = append([]Turn{{Role: schema.System, Content: content}}, h.turns...)
	h.trim()
}

// System returns the system turn's content.
func (h *History) System() (string, bool) {
	if !h.hasSystem() {
		return "", false
	}
	return h.turns[0].Content, true
}

func (h *History) AppendUser(content string) {
	h.append(Turn{Role: schema.User, Content: content})
}

func (h *History) AppendAssistant(content string) {
	h.append(Turn{Role: schema.Assistant, Content: content})
}

func (h *History) append(t Turn) {
	h.turns = append(h.turns, t)
	h.trim()
}

// trim evicts from the front, skipping the system turn, until the window
// fits.
func (h *History) trim() {
	excess := len(h.turns) - h.window
	if excess <= 0 {
		return
	}
	if !h.hasSystem() {
		h.turns = append([]Turn(nil), h.turns[excess:]...)
		return
	}
	kept := make([]Turn, 0, h.window)
	kept = append(kept, h.turns[0])
	kept = append(kept, h.turns[1+excess:]...)
	h.turns = kept
}

func (h *History) hasSystem() bool {
	return len(h.turns) > 0 && h.turns[0].Role == schema.System
}

// Len returns the number of turns.
func (h *History) Len() int { return len(h.turns) }

// Window returns the turn cap.
func (h *History) Window() int { return h.window }

// Turns returns a copy of the conversation in order.
func (h *History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

// snapshot and restore let a failed exchange leave no trace.
func (h *History) snapshot() []Turn { return h.Turns() }

func (h *History) restore(turns []Turn) { h.turns = turns }

// Messages converts the conversation to chat model input.
func (h *History) Messages() []*schema.Message {
	return toMessages(h.turns)
}

func toMessages(turns []Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, &schema.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}
