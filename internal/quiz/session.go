package quiz

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/tutor/internal/model"
)

// CurrentQuiz is the quiz a session is working on.
type CurrentQuiz struct {
	ID        string
	Level     model.TaxonomyLevel
	Source    string
	RawText   string
	Questions []model.ParsedQuestion
	CreatedAt time.Time
}

// Session holds one user's conversation state. Callers serialize access
// with Lock and Unlock.
type Session struct {
	sync.Mutex

	ID      string
	History []model.ChatMessage
	Quiz    *CurrentQuiz
	Report  *model.GradeReport

	// Notes is uploaded slide-notes text that overrides course files.
	Notes     string
	NotesName string
}

// NewSession creates an empty session with a fresh ID.
func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Reset clears chat history, the current quiz and the last report.
// Uploaded notes are kept.
func (s *Session) Reset() {
	s.History = nil
	s.Quiz = nil
	s.Report = nil
}
