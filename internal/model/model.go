package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoData reports that the performance log is missing, empty or unreadable.
// Callers treat it as "no data yet", never as a fatal condition.
var ErrNoData = errors.New("no performance data yet")

// Role represents a chat message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged turn exchanged with the model backend.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TaxonomyLevel is the Bloom's taxonomy level requested for a quiz.
type TaxonomyLevel int

const (
	// LevelNone is the default mode: no explicit level.
	LevelNone TaxonomyLevel = iota
	LevelRecall
	LevelComprehension
	LevelApplication
	LevelAnalysis
	LevelSynthesisEvaluation
	// LevelMixed requests one question per level 1-5.
	LevelMixed
)

// Levels lists the five discrete levels in order.
var Levels = []TaxonomyLevel{
	LevelRecall,
	LevelComprehension,
	LevelApplication,
	LevelAnalysis,
	LevelSynthesisEvaluation,
}

var levelNames = map[TaxonomyLevel]string{
	LevelNone:                "",
	LevelRecall:              "Recall/Knowledge",
	LevelComprehension:       "Comprehension",
	LevelApplication:         "Application",
	LevelAnalysis:            "Analysis",
	LevelSynthesisEvaluation: "Synthesis/Evaluation",
	LevelMixed:               "Mixed",
}

// Name returns the human-readable level name.
func (l TaxonomyLevel) Name() string {
	return levelNames[l]
}

// String returns the short form used in flags, forms and the log ("", "1".."5", "mixed").
func (l TaxonomyLevel) String() string {
	switch {
	case l == LevelNone:
		return ""
	case l == LevelMixed:
		return "mixed"
	case l >= LevelRecall && l <= LevelSynthesisEvaluation:
		return fmt.Sprintf("%d", int(l))
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// QuestionCount is the number of questions requested at this level.
func (l TaxonomyLevel) QuestionCount() int {
	switch l {
	case LevelNone:
		return 3
	case LevelMixed:
		return len(Levels)
	default:
		return 5
	}
}

// ParseLevel accepts "", "1".."5", level names (case-insensitive) or "mixed".
func ParseLevel(s string) (TaxonomyLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" || s == "default" {
		return LevelNone, nil
	}
	if strings.HasPrefix(s, "mixed") {
		return LevelMixed, nil
	}
	for l, name := range levelNames {
		if l == LevelNone || l == LevelMixed {
			continue
		}
		if s == l.String() || s == strings.ToLower(name) {
			return l, nil
		}
		// "recall", "synthesis", "evaluation"
		for _, part := range strings.Split(strings.ToLower(name), "/") {
			if s == part {
				return l, nil
			}
		}
	}
	return LevelNone, fmt.Errorf("unknown taxonomy level %q", s)
}

// AnswerMarker precedes the correct answer letter in generated quiz text.
const AnswerMarker = "Correct Answer:"

// QuizRequest is built for each "generate quiz" action and discarded afterwards.
type QuizRequest struct {
	Grounding string
	Count     int
	Level     TaxonomyLevel
}

// ParsedQuestion is one question recovered from model-generated quiz text.
type ParsedQuestion struct {
	ID            string `json:"id"`
	Body          string `json:"body"`
	CorrectAnswer string `json:"correct_answer"`
}

// GradedResult is the outcome for one question.
type GradedResult struct {
	Question  ParsedQuestion `json:"question"`
	Submitted string         `json:"submitted"`
	Correct   string         `json:"correct"`
	IsCorrect bool           `json:"is_correct"`
	GradedAt  time.Time      `json:"graded_at"`
}

// GradeReport holds all results for one submission.
type GradeReport struct {
	QuizID       string         `json:"quiz_id"`
	Level        TaxonomyLevel  `json:"level"`
	Results      []GradedResult `json:"results"`
	CorrectCount int            `json:"correct_count"`
	Total        int            `json:"total"`
}

// Score returns the fraction of correct answers (0 for an empty report).
func (r GradeReport) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.CorrectCount) / float64(r.Total)
}

// LogEntry is the persisted form of a GradedResult.
type LogEntry struct {
	QuestionID    string        `json:"question_id"`
	QuestionText  string        `json:"question_text"`
	UserAnswer    string        `json:"user_answer"`
	CorrectAnswer string        `json:"correct_answer"`
	Correct       bool          `json:"correct"`
	Timestamp     time.Time     `json:"timestamp"`
	QuizID        string        `json:"quiz_id,omitempty"`
	Level         TaxonomyLevel `json:"level,omitempty"`
}

// Entries converts a report into log entries in result order.
func (r GradeReport) Entries() []LogEntry {
	entries := make([]LogEntry, 0, len(r.Results))
	for _, res := range r.Results {
		entries = append(entries, LogEntry{
			QuestionID:    res.Question.ID,
			QuestionText:  res.Question.Body,
			UserAnswer:    res.Submitted,
			CorrectAnswer: res.Correct,
			Correct:       res.IsCorrect,
			Timestamp:     res.GradedAt,
			QuizID:        r.QuizID,
			Level:         r.Level,
		})
	}
	return entries
}

// QuizRecord is the audit copy of a generated quiz.
type QuizRecord struct {
	ID          string        `json:"id"`
	Level       TaxonomyLevel `json:"level"`
	Source      string        `json:"source"`
	RawText     string        `json:"raw_text"`
	ParsedCount int           `json:"parsed_count"`
	CreatedAt   time.Time     `json:"created_at"`
}

// EmptyContextPolicy decides what happens when the grounding text is empty.
type EmptyContextPolicy string

const (
	// EmptyContextBlock refuses to call the backend.
	EmptyContextBlock EmptyContextPolicy = "block"
	// EmptyContextAllow sends a content-free prompt.
	EmptyContextAllow EmptyContextPolicy = "allow"
)

// TutorConfig holds runtime parameters set via CLI flags or config file.
type TutorConfig struct {
	CoursesDir    string // root folder holding one sub-folder per course
	Course        string // course folder name, e.g. "PTA_1010"
	EmptyContext  EmptyContextPolicy
	LLMTimeout    time.Duration // per-request backend deadline; 0 means none
	BasePath      string        // URL prefix for sub-path deployments (e.g. /tutor)
	SecureCookies bool          // Set Secure flag on cookies (disable for local dev)
	Lang          string
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}
