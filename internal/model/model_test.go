package model

import (
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    TaxonomyLevel
		wantErr bool
	}{
		{"", LevelNone, false},
		{"1", LevelRecall, false},
		{"2", LevelComprehension, false},
		{"3", LevelApplication, false},
		{"4", LevelAnalysis, false},
		{"5", LevelSynthesisEvaluation, false},
		{"Mixed", LevelMixed, false},
		{"mixed (levels 1-5)", LevelMixed, false},
		{"recall", LevelRecall, false},
		{"Analysis", LevelAnalysis, false},
		{"evaluation", LevelSynthesisEvaluation, false},
		{"6", LevelNone, true},
		{"hard", LevelNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuestionCount(t *testing.T) {
	if got := LevelNone.QuestionCount(); got != 3 {
		t.Errorf("default mode count = %d, want 3", got)
	}
	if got := LevelAnalysis.QuestionCount(); got != 5 {
		t.Errorf("single level count = %d, want 5", got)
	}
	if got := LevelMixed.QuestionCount(); got != 5 {
		t.Errorf("mixed count = %d, want 5", got)
	}
}

func TestGradeReportEntries(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := GradeReport{
		QuizID: "quiz-1",
		Level:  LevelApplication,
		Results: []GradedResult{
			{Question: ParsedQuestion{ID: "Q001", Body: "first"}, Submitted: "A", Correct: "A", IsCorrect: true, GradedAt: now},
			{Question: ParsedQuestion{ID: "Q002", Body: "second"}, Submitted: "", Correct: "C", GradedAt: now},
		},
		CorrectCount: 1,
		Total:        2,
	}

	if got := r.Score(); got != 0.5 {
		t.Errorf("Score() = %f, want 0.5", got)
	}

	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].QuestionID != "Q001" || !entries[0].Correct {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].UserAnswer != "" || entries[1].Correct {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
	if entries[1].QuizID != "quiz-1" || entries[1].Level != LevelApplication {
		t.Errorf("quiz metadata not carried: %+v", entries[1])
	}

	if (GradeReport{}).Score() != 0 {
		t.Error("empty report should score 0")
	}
}
