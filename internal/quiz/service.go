package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/tutor/internal/content"
	"github.com/pavelanni/tutor/internal/llm"
	"github.com/pavelanni/tutor/internal/llm/prompts"
	"github.com/pavelanni/tutor/internal/model"
)

// PerformanceLog is the append-only store of graded answers.
type PerformanceLog interface {
	Append(ctx context.Context, entries []model.LogEntry) error
	ReadAll(ctx context.Context) ([]model.LogEntry, error)
}

// QuizAuditor keeps a copy of each generated quiz's raw text.
type QuizAuditor interface {
	SaveQuiz(ctx context.Context, q model.QuizRecord) error
}

// Submission is the outcome of grading. Report is always set; PersistErr
// reports a failed log write.
type Submission struct {
	Report     model.GradeReport
	PersistErr error
}

// Service runs tutor chat and the generate, parse, grade, persist pipeline.
type Service struct {
	backend llm.Backend
	gen     *Generator
	log     PerformanceLog
	audit   QuizAuditor
	policy  model.EmptyContextPolicy
	now     func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithAuditor records generated quizzes.
func WithAuditor(a QuizAuditor) Option {
	return func(s *Service) { s.audit = a }
}

// WithEmptyContext sets the empty-grounding policy.
func WithEmptyContext(p model.EmptyContextPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service and loads the prompt templates.
func NewService(backend llm.Backend, log PerformanceLog, opts ...Option) (*Service, error) {
	if err := prompts.Load(prompts.FS); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	s := &Service{
		backend: backend,
		log:     log,
		policy:  model.EmptyContextBlock,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.gen = NewGenerator(backend, s.policy)
	return s, nil
}

// Log returns the performance log the service appends to.
func (s *Service) Log() PerformanceLog {
	return s.log
}

// Ask answers a question from the grounding text. History gains the user
// and assistant turns only when the backend answers.
func (s *Service) Ask(ctx context.Context, sess *Session, g content.Grounding, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	system, err := prompts.BuildTutorPrompt(g.Text)
	if err != nil {
		return "", fmt.Errorf("build tutor prompt: %w", err)
	}

	userTurn := model.ChatMessage{Role: model.RoleUser, Content: question}
	msgs := make([]model.ChatMessage, 0, len(sess.History)+2)
	msgs = append(msgs, model.ChatMessage{Role: model.RoleSystem, Content: system})
	msgs = append(msgs, sess.History...)
	msgs = append(msgs, userTurn)

	reply, err := s.backend.Chat(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("ask tutor: %w", err)
	}

	sess.History = append(sess.History, userTurn, model.ChatMessage{
		Role:    model.RoleAssistant,
		Content: reply.Content,
	})
	return reply.Content, nil
}

// GenerateQuiz produces and parses a new quiz. On backend failure the
// session keeps its previous quiz. A quiz whose text has no parseable
// questions still replaces the current one and ErrNoQuestions is returned
// with it.
func (s *Service) GenerateQuiz(ctx context.Context, sess *Session, g content.Grounding, level model.TaxonomyLevel) (*CurrentQuiz, error) {
	raw, err := s.gen.Generate(ctx, g.Text, level)
	if err != nil {
		return nil, err
	}

	cur := &CurrentQuiz{
		ID:        s.newID(),
		Level:     level,
		Source:    string(g.Source),
		RawText:   raw,
		Questions: Parse(raw),
		CreatedAt: s.now(),
	}
	slog.Info("quiz generated", "quiz_id", cur.ID, "level", level.String(), "questions", len(cur.Questions), "source", g.Source)

	if s.audit != nil {
		rec := model.QuizRecord{
			ID:          cur.ID,
			Level:       level,
			Source:      cur.Source,
			RawText:     raw,
			ParsedCount: len(cur.Questions),
			CreatedAt:   cur.CreatedAt,
		}
		if err := s.audit.SaveQuiz(ctx, rec); err != nil {
			slog.Warn("quiz audit failed", "quiz_id", cur.ID, "error", err)
		}
	}

	sess.Quiz = cur
	sess.Report = nil
	if len(cur.Questions) == 0 {
		return cur, ErrNoQuestions
	}
	return cur, nil
}

// Submit grades answers against the session's quiz and appends the results
// to the performance log.
func (s *Service) Submit(ctx context.Context, sess *Session, answers string) (Submission, error) {
	if sess.Quiz == nil {
		return Submission{}, ErrNoQuiz
	}
	if len(sess.Quiz.Questions) == 0 {
		return Submission{}, ErrNoQuestions
	}

	report := Grade(sess.Quiz.ID, sess.Quiz.Questions, answers, s.now())
	report.Level = sess.Quiz.Level
	sess.Report = &report

	sub := Submission{Report: report}
	if err := s.log.Append(ctx, report.Entries()); err != nil {
		slog.Error("persist grading results", "quiz_id", report.QuizID, "error", err)
		sub.PersistErr = fmt.Errorf("persist results: %w", err)
	}
	return sub, nil
}
