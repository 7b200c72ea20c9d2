package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/tutor/internal/model"
)

// Config selects and configures a backend.
type Config struct {
	Provider string // openai, anthropic, gemini, mock
	BaseURL  string // OpenAI-compatible endpoint; ignored by other providers
	APIKey   string
	Model    string
}

// New creates a Backend from configuration, wrapped with request logging.
func New(ctx context.Context, cfg Config) (Backend, error) {
	var (
		base Backend
		err  error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "openai":
		base, err = NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "anthropic":
		base, err = NewAnthropic(cfg.APIKey, cfg.Model)
	case "gemini":
		base, err = NewGemini(ctx, cfg.APIKey, cfg.Model)
	case "mock":
		base = NewMock()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s provider: %w", cfg.Provider, err)
	}
	return WithLogging(base), nil
}

// LoggingBackend records model, latency and outcome of every request.
type LoggingBackend struct {
	inner Backend
}

// WithLogging wraps a Backend with slog request logging.
func WithLogging(b Backend) Backend {
	return &LoggingBackend{inner: b}
}

func (l *LoggingBackend) Chat(ctx context.Context, msgs []model.ChatMessage) (model.ChatMessage, error) {
	start := time.Now()
	reply, err := l.inner.Chat(ctx, msgs)
	attrs := []any{
		"model", l.inner.ModelID(),
		"messages", len(msgs),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		slog.Warn("LLM request failed", append(attrs, "error", err)...)
		return reply, err
	}
	slog.Info("LLM request", append(attrs, "reply_chars", len(reply.Content))...)
	return reply, nil
}

func (l *LoggingBackend) ModelID() string {
	return l.inner.ModelID()
}

// Unwrap returns the wrapped backend.
func (l *LoggingBackend) Unwrap() Backend {
	return l.inner
}

// Pinger is implemented by backends that support a startup health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping runs the backend's health check if it has one.
func Ping(ctx context.Context, b Backend) error {
	for {
		if p, ok := b.(Pinger); ok {
			return p.Ping(ctx)
		}
		w, ok := b.(interface{ Unwrap() Backend })
		if !ok {
			return nil
		}
		b = w.Unwrap()
	}
}
