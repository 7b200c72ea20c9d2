package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pavelanni/tutor/internal/model"
)

func questions(answers ...string) []model.ParsedQuestion {
	qs := make([]model.ParsedQuestion, len(answers))
	for i, a := range answers {
		qs[i] = model.ParsedQuestion{ID: string(rune('1' + i)), Body: "q", CorrectAnswer: a}
	}
	return qs
}

func correctness(r model.GradeReport) []bool {
	out := make([]bool, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.IsCorrect
	}
	return out
}

func TestGrade(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		answers    []string
		submission string
		want       []bool
		wantScore  int
		wantSubmit []string
	}{
		{
			name:       "normalization",
			answers:    []string{"A", "B", "D"},
			submission: " a , B ,c",
			want:       []bool{true, true, false},
			wantScore:  2,
			wantSubmit: []string{"A", "B", "C"},
		},
		{
			name:       "short submission",
			answers:    []string{"A", "B", "C"},
			submission: "A",
			want:       []bool{true, false, false},
			wantScore:  1,
			wantSubmit: []string{"A", "", ""},
		},
		{
			name:       "two tokens for three questions",
			answers:    []string{"A", "B", "C"},
			submission: "A, B",
			want:       []bool{true, true, false},
			wantScore:  2,
			wantSubmit: []string{"A", "B", ""},
		},
		{
			name:       "extra tokens ignored",
			answers:    []string{"A", "B"},
			submission: "A,B,C,D",
			want:       []bool{true, true},
			wantScore:  2,
			wantSubmit: []string{"A", "B"},
		},
		{
			name:       "blank submission",
			answers:    []string{"A", "B"},
			submission: "   ",
			want:       []bool{false, false},
			wantScore:  0,
			wantSubmit: []string{"", ""},
		},
		{
			name:       "empty token in the middle",
			answers:    []string{"A", "B", "C"},
			submission: "A,,C",
			want:       []bool{true, false, true},
			wantScore:  2,
			wantSubmit: []string{"A", "", "C"},
		},
		{
			name:       "non-letter answer",
			answers:    []string{"QUADRICEPS"},
			submission: "quadriceps",
			want:       []bool{true},
			wantScore:  1,
			wantSubmit: []string{"QUADRICEPS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Grade("quiz-1", questions(tt.answers...), tt.submission, now)
			assert.Equal(t, tt.want, correctness(r))
			assert.Equal(t, tt.wantScore, r.CorrectCount)
			assert.Equal(t, len(tt.answers), r.Total)
			assert.Equal(t, "quiz-1", r.QuizID)
			for i, res := range r.Results {
				assert.Equal(t, tt.wantSubmit[i], res.Submitted)
				assert.Equal(t, tt.answers[i], res.Correct)
				assert.Equal(t, now, res.GradedAt)
			}
		})
	}
}

func TestGradeNoQuestions(t *testing.T) {
	r := Grade("q", nil, "A,B", time.Now())
	assert.Empty(t, r.Results)
	assert.Zero(t, r.Total)
	assert.Zero(t, r.Score())
}

func TestNormalizeAnswers(t *testing.T) {
	assert.Nil(t, NormalizeAnswers(""))
	assert.Equal(t, []string{"A", "B", ""}, NormalizeAnswers("a, b ,"))
}
