package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"

	"github.com/pavelanni/tutor/internal/model"
)

// FS holds the built-in prompt templates.
//
//go:embed templates/*.txt
var FS embed.FS

// Refusal is the reply the tutor is told to give for off-topic questions.
const Refusal = "I'm sorry, I can only help with the course content provided."

var courseContentRegex = regexp.MustCompile(`(?i)</?\s*course-content\b[^>]*>`)

var (
	loadOnce      sync.Once
	loadErr       error
	tutorTemplate *template.Template
	quizTemplate  *template.Template
)

// TutorData holds template data for the tutor system prompt.
type TutorData struct {
	Grounding string
	Refusal   string
}

// LevelInfo names one taxonomy level inside the quiz prompt.
type LevelInfo struct {
	Number int
	Name   string
}

// QuizData holds template data for the quiz prompt.
type QuizData struct {
	Count     int
	Level     int
	LevelName string
	Mixed     bool
	Levels    []LevelInfo
	Marker    string
	Grounding string
}

// Load parses prompt templates from fsys.
// It uses sync.Once to ensure templates are loaded only once.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		tutorTemplate, loadErr = parseFile(fsys, "templates/tutor_system.txt")
		if loadErr != nil {
			return
		}
		quizTemplate, loadErr = parseFile(fsys, "templates/quiz.txt")
	})
	return loadErr
}

func parseFile(fsys fs.FS, name string) (*template.Template, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read prompt file %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}
	return tmpl, nil
}

// BuildTutorPrompt renders the system prompt that restricts the tutor to the grounding text.
func BuildTutorPrompt(grounding string) (string, error) {
	if tutorTemplate == nil {
		return "", notLoaded()
	}
	return execute(tutorTemplate, TutorData{
		Grounding: sanitizeGrounding(grounding),
		Refusal:   Refusal,
	})
}

// BuildQuizPrompt renders the quiz-generation prompt for a request.
func BuildQuizPrompt(req model.QuizRequest) (string, error) {
	if quizTemplate == nil {
		return "", notLoaded()
	}
	data := QuizData{
		Count:     req.Count,
		LevelName: req.Level.Name(),
		Mixed:     req.Level == model.LevelMixed,
		Marker:    model.AnswerMarker,
		Grounding: sanitizeGrounding(req.Grounding),
	}
	if data.Count <= 0 {
		data.Count = req.Level.QuestionCount()
	}
	if !data.Mixed && req.Level != model.LevelNone {
		data.Level = int(req.Level)
	}
	if data.Mixed {
		for _, l := range model.Levels {
			data.Levels = append(data.Levels, LevelInfo{Number: int(l), Name: l.Name()})
		}
	}
	return execute(quizTemplate, data)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template: %w", err)
	}
	return buf.String(), nil
}

func notLoaded() error {
	if loadErr != nil {
		return fmt.Errorf("templates load failed: %w", loadErr)
	}
	return errors.New("templates not initialized: call Load first")
}

// sanitizeGrounding strips delimiter tags so course text cannot close the content block early.
func sanitizeGrounding(text string) string {
	return strings.TrimSpace(courseContentRegex.ReplaceAllString(text, ""))
}
