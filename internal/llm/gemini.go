package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/pavelanni/tutor/internal/model"
)

// GeminiBackend implements Backend using the Google Gemini SDK.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, apiKey, modelName string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if modelName == "" {
		return nil, errors.New("model name is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiBackend{client: client, model: modelName}, nil
}

// ModelID returns the configured model name.
func (p *GeminiBackend) ModelID() string {
	return p.model
}

// Chat sends the conversation; system turns become the system instruction.
func (p *GeminiBackend) Chat(ctx context.Context, msgs []model.ChatMessage) (model.ChatMessage, error) {
	system, turns := splitSystem(msgs)

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, buildGeminiContents(turns), config)
	if err != nil {
		return model.ChatMessage{}, mapGeminiError(err)
	}

	text := result.Text()
	if text == "" {
		return model.ChatMessage{}, &ErrInvalidResponse{Err: errors.New("empty Gemini response")}
	}
	return model.ChatMessage{Role: model.RoleAssistant, Content: text}, nil
}

func buildGeminiContents(msgs []model.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == model.RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

// mapGeminiError classifies SDK errors. The SDK returns genai.APIError by
// value; the pointer form is accepted too.
func mapGeminiError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
