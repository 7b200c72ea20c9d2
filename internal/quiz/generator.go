package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pavelanni/tutor/internal/llm"
	"github.com/pavelanni/tutor/internal/llm/prompts"
	"github.com/pavelanni/tutor/internal/model"
)

var (
	// ErrEmptyGrounding is returned when there is no course text and the
	// empty-context policy is block.
	ErrEmptyGrounding = errors.New("no course content available")
	// ErrNoQuiz is returned when answers are submitted before a quiz exists.
	ErrNoQuiz = errors.New("no quiz to grade")
	// ErrNoQuestions is returned when the model's quiz text has no parseable questions.
	ErrNoQuestions = errors.New("no questions could be parsed from the quiz")
	// ErrEmptyQuestion is returned for a blank tutor question.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Generator asks the backend for raw quiz text.
type Generator struct {
	backend llm.Backend
	policy  model.EmptyContextPolicy
}

// NewGenerator creates a Generator. An empty policy means block.
func NewGenerator(backend llm.Backend, policy model.EmptyContextPolicy) *Generator {
	if policy == "" {
		policy = model.EmptyContextBlock
	}
	return &Generator{backend: backend, policy: policy}
}

// Generate returns the unparsed quiz text for the grounding at level.
// The grounding is expected to be bounded already.
func (g *Generator) Generate(ctx context.Context, grounding string, level model.TaxonomyLevel) (string, error) {
	if strings.TrimSpace(grounding) == "" && g.policy == model.EmptyContextBlock {
		return "", ErrEmptyGrounding
	}

	prompt, err := prompts.BuildQuizPrompt(model.QuizRequest{
		Grounding: grounding,
		Count:     level.QuestionCount(),
		Level:     level,
	})
	if err != nil {
		return "", fmt.Errorf("build quiz prompt: %w", err)
	}

	reply, err := g.backend.Chat(ctx, []model.ChatMessage{
		{Role: model.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("generate quiz: %w", err)
	}
	return reply.Content, nil
}
