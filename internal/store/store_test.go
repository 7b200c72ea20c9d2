package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pavelanni/tutor/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEntries(base time.Time, correct ...bool) []model.LogEntry {
	entries := make([]model.LogEntry, len(correct))
	for i, c := range correct {
		entries[i] = model.LogEntry{
			QuestionID:    "Q00" + string(rune('1'+i)),
			QuestionText:  "question " + string(rune('1'+i)),
			UserAnswer:    "A",
			CorrectAnswer: "A",
			Correct:       c,
			Timestamp:     base.Add(time.Duration(i) * time.Second),
			QuizID:        "quiz-1",
			Level:         model.LevelAnalysis,
		}
		if !c {
			entries[i].UserAnswer = "B"
		}
	}
	return entries
}

func TestReadAllEmpty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ReadAll(context.Background())
	if !errors.Is(err, model.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestAppendAndReadAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := testEntries(base, true, false)
	if err := s.Append(ctx, first); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].QuestionID != "Q001" || !got[0].Correct {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Correct {
		t.Errorf("entry 1 should be incorrect")
	}
	if !got[0].Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, base)
	}
	if got[0].Level != model.LevelAnalysis || got[0].QuizID != "quiz-1" {
		t.Errorf("level/quiz = %v/%q", got[0].Level, got[0].QuizID)
	}

	// Additive: prior rows stay, new rows follow in order.
	second := testEntries(base.Add(time.Hour), true, true, true)
	if err := s.Append(ctx, second); err != nil {
		t.Fatalf("Append second: %v", err)
	}
	got, err = s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	for i, want := range append(first, second...) {
		if got[i].QuestionID != want.QuestionID || got[i].Correct != want.Correct {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want)
		}
	}

	// Reading twice is idempotent.
	again, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll again: %v", err)
	}
	if len(again) != len(got) {
		t.Errorf("second read returned %d entries, want %d", len(again), len(got))
	}
}

func TestAppendEmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.Append(context.Background(), nil); err != nil {
		t.Fatalf("Append(nil): %v", err)
	}
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}

func TestReadAllCorruptRow(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(`INSERT INTO grading_log
		(question_id, question_text, user_answer, correct_answer, correct, timestamp)
		VALUES ('Q001', 'q', 'A', 'A', 1, 'yesterday')`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.ReadAll(context.Background())
	if !errors.Is(err, model.ErrNoData) {
		t.Fatalf("expected ErrNoData for corrupt row, got %v", err)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutor.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, testEntries(time.Now(), true)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 entry after reopen, got %d", len(got))
	}
}

func TestQuizAudit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetQuiz(ctx, "missing")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing quiz")
	}

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"q1", "q2"} {
		err := s.SaveQuiz(ctx, model.QuizRecord{
			ID:          id,
			Level:       model.LevelMixed,
			Source:      "pdf",
			RawText:     "raw " + id,
			ParsedCount: 5,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveQuiz: %v", err)
		}
	}

	got, err = s.GetQuiz(ctx, "q1")
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got == nil || got.RawText != "raw q1" || got.Level != model.LevelMixed {
		t.Errorf("GetQuiz = %+v", got)
	}

	list, err := s.ListQuizzes(ctx, 0)
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(list))
	}
	if list[0].ID != "q2" {
		t.Errorf("expected newest first, got %q", list[0].ID)
	}
}

func TestExportLog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exp, err := s.ExportLog(ctx, "PTA_1010")
	if err != nil {
		t.Fatalf("ExportLog empty: %v", err)
	}
	if exp.Total != 0 || len(exp.Entries) != 0 {
		t.Errorf("empty export = %+v", exp)
	}

	if err := s.Append(ctx, testEntries(time.Now(), true, false, true)); err != nil {
		t.Fatal(err)
	}
	exp, err = s.ExportLog(ctx, "PTA_1010")
	if err != nil {
		t.Fatalf("ExportLog: %v", err)
	}
	if exp.Course != "PTA_1010" || exp.Total != 3 || exp.Correct != 2 || exp.Incorrect != 1 {
		t.Errorf("export = %+v", exp)
	}
}
