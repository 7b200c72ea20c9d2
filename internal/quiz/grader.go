package quiz

import (
	"strings"
	"time"

	"github.com/pavelanni/tutor/internal/model"
)

// NormalizeAnswers splits a comma-separated submission into trimmed,
// uppercased tokens. A blank submission has no tokens.
func NormalizeAnswers(submission string) []string {
	if strings.TrimSpace(submission) == "" {
		return nil
	}
	parts := strings.Split(submission, ",")
	for i, p := range parts {
		parts[i] = strings.ToUpper(strings.TrimSpace(p))
	}
	return parts
}

// Grade matches submitted tokens to questions by position. Missing tokens
// count as empty answers and are never correct; extra tokens are ignored.
func Grade(quizID string, questions []model.ParsedQuestion, submission string, now time.Time) model.GradeReport {
	answers := NormalizeAnswers(submission)

	report := model.GradeReport{
		QuizID:  quizID,
		Results: make([]model.GradedResult, 0, len(questions)),
		Total:   len(questions),
	}
	for i, q := range questions {
		var submitted string
		if i < len(answers) {
			submitted = answers[i]
		}
		correct := strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
		ok := submitted != "" && submitted == correct
		if ok {
			report.CorrectCount++
		}
		report.Results = append(report.Results, model.GradedResult{
			Question:  q,
			Submitted: submitted,
			Correct:   correct,
			IsCorrect: ok,
			GradedAt:  now,
		})
	}
	return report
}
