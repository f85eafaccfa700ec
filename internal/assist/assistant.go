package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/gsarma/judgepad/internal/directive"
)

// ErrAssistantUnavailable wraps every failure to obtain a completion.
var ErrAssistantUnavailable = errors.New("assistant unavailable")

const lineCompletionMaxTokens = 400

// Assistant sends conversations to a chat model.
type Assistant struct {
	model  model.BaseChatModel
	logger *zap.Logger
}

// NewAssistant wraps chat. A nil chat model makes every call fail with
// ErrAssistantUnavailable.
func NewAssistant(chat model.BaseChatModel, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{model: chat, logger: logger}
}

// Available reports whether a chat model is configured.
func (a *Assistant) Available() bool {
	return a != nil && a.model != nil
}

// Complete returns the model's reply to turns.
func (a *Assistant) Complete(ctx context.Context, turns []Turn, opts ...model.Option) (string, error) {
	if !a.Available() {
		return "", fmt.Errorf("%w: no API key configured", ErrAssistantUnavailable)
	}
	msg, err := a.model.Generate(ctx, toMessages(turns), opts...)
	if err != nil {
		a.logger.Warn("chat completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: no valid response received", ErrAssistantUnavailable)
	}
	return msg.Content, nil
}

// CompleteLine asks for the completion of a single line, outside of any
// conversation. It returns the first code block of the reply, or "".
func (a *Assistant) CompleteLine(ctx context.Context, line string) (string, error) {
	reply, err := a.Complete(ctx, []Turn{
		{Role: schema.System, Content: lineCompletionPrompt},
		{Role: schema.User, Content: lineCompletionRequest(line)},
	}, model.WithMaxTokens(lineCompletionMaxTokens))
	if err != nil {
		return "", err
	}
	return directive.FirstCodeBlock(reply), nil
}

// Conversation is the chat of one session: a History plus the Assistant
// answering it. Exchanges are serialized; a failed exchange leaves the
// history as it was.
type Conversation struct {
	assistant *Assistant

	mu      sync.Mutex
	history *History
}

func NewConversation(assistant *Assistant, window int) *Conversation {
	return &Conversation{assistant: assistant, history: NewHistory(window)}
}

// SetSystem sets the system turn.
func (c *Conversation) SetSystem(content string) {
	c.mu.Lock()
	c.history.SetSystem(content)
	c.mu.Unlock()
}

// Ask appends prompt as a user turn, requests a completion over the whole
// window and appends the reply. On failure neither turn is kept.
func (c *Conversation) Ask(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	before := c.history.snapshot()
	c.history.AppendUser(prompt)
	reply, err := c.assistant.Complete(ctx, c.history.Turns())
	if err != nil {
		c.history.restore(before)
		return "", err
	}
	c.history.AppendAssistant(reply)
	return reply, nil
}

// Turns returns a copy of the conversation.
func (c *Conversation) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Turns()
}
