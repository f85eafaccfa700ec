package assist

import (
	"context"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// ModelConfig selects and tunes the chat model.
type ModelConfig struct {
	BaseURL     string        `json:"base_url"`
	APIKey      string        `json:"api_key"`
	ModelName   string        `json:"model_name"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultModelConfig targets Groq's OpenAI-compatible endpoint.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		BaseURL:     "https://api.groq.com/openai/v1",
		ModelName:   "llama-3.3-70b-versatile",
		Temperature: 0.7,
		MaxTokens:   4000,
		Timeout:     120 * time.Second,
	}
}

// NewChatModel builds the chat model for m. Without an API key it returns
// nil and no error; an Assistant without a model reports itself
// unavailable.
func NewChatModel(ctx context.Context, m ModelConfig) (model.BaseChatModel, error) {
	if m.APIKey == "" {
		return nil, nil
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = 4000
	}
	if m.Timeout == 0 {
		m.Timeout = 120 * time.Second
	}
	temperature := m.Temperature
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     m.BaseURL,
		APIKey:      m.APIKey,
		Model:       m.ModelName,
		Temperature: &temperature,
		MaxTokens:   &m.MaxTokens,
		Timeout:     m.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}
