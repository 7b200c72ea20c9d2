package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/pavelanni/tutor/internal/model"
)

const defaultMaxTokens = 2048

// AnthropicBackend implements Backend using the Anthropic SDK.
type AnthropicBackend struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates an Anthropic backend.
func NewAnthropic(apiKey, modelName string) (*AnthropicBackend, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	if modelName == "" {
		return nil, errors.New("model name is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicBackend{
		client:    &client,
		model:     modelName,
		maxTokens: defaultMaxTokens,
	}, nil
}

// ModelID returns the configured model name.
func (p *AnthropicBackend) ModelID() string {
	return p.model
}

// Chat sends the conversation; system turns are folded into the system block.
func (p *AnthropicBackend) Chat(ctx context.Context, msgs []model.ChatMessage) (model.ChatMessage, error) {
	system, turns := splitSystem(msgs)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  buildAnthropicMessages(turns),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return model.ChatMessage{}, mapAnthropicError(err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return model.ChatMessage{Role: model.RoleAssistant, Content: block.Text}, nil
		}
	}
	return model.ChatMessage{}, &ErrInvalidResponse{Err: errors.New("no text content in Anthropic response")}
}

// splitSystem joins all system turns and returns the remaining turns in order.
func splitSystem(msgs []model.ChatMessage) (string, []model.ChatMessage) {
	var system []string
	turns := make([]model.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}

func buildAnthropicMessages(msgs []model.ChatMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, len(msgs))
	for i, m := range msgs {
		role := anthropic.MessageParamRoleUser
		if m.Role == model.RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		out[i] = anthropic.MessageParam{
			Role: role,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(m.Content),
			},
		}
	}
	return out
}

func mapAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.StatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
