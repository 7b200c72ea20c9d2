package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pavelanni/tutor/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Backend is a stateless request/response chat function: an ordered list of
// role-tagged messages in, one assistant message out.
type Backend interface {
	Chat(ctx context.Context, msgs []model.ChatMessage) (model.ChatMessage, error)
	ModelID() string
}

// OpenAIBackend wraps an OpenAI-compatible API client.
type OpenAIBackend struct {
	api         *openai.Client
	model       string
	temperature float32
}

// NewOpenAI creates a backend for OpenAI or any compatible endpoint (Ollama, vLLM).
func NewOpenAI(baseURL, apiKey, modelName string) (*OpenAIBackend, error) {
	if modelName == "" {
		return nil, errors.New("model name is required")
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIBackend{
		api:         openai.NewClientWithConfig(config),
		model:       modelName,
		temperature: 0.3,
	}, nil
}

// Ping verifies the endpoint is reachable by listing models.
func (c *OpenAIBackend) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return mapOpenAIError(err)
	}
	return nil
}

// ModelID returns the configured model name.
func (c *OpenAIBackend) ModelID() string {
	return c.model
}

// Chat sends the conversation and returns the first choice.
func (c *OpenAIBackend) Chat(ctx context.Context, msgs []model.ChatMessage) (model.ChatMessage, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    buildOpenAIMessages(msgs),
		Temperature: c.temperature,
	})
	if err != nil {
		return model.ChatMessage{}, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return model.ChatMessage{}, &ErrInvalidResponse{Err: errors.New("no choices in response")}
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "model", resp.Model, "raw", raw)
	if raw == "" {
		return model.ChatMessage{}, &ErrInvalidResponse{Err: errors.New("empty message content")}
	}

	return model.ChatMessage{Role: model.RoleAssistant, Content: raw}, nil
}

func buildOpenAIMessages(msgs []model.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case model.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case model.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}
	return out
}

func mapOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ErrProviderUnavailable{Err: err}
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		case apiErr.HTTPStatusCode >= 400:
			return &ErrInvalidResponse{Err: fmt.Errorf("request rejected: %w", err)}
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
