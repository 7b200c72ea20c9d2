package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pavelanni/tutor/internal/model"
)

// SaveQuiz records the raw model output of a generated quiz.
func (s *Store) SaveQuiz(ctx context.Context, q model.QuizRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id, level, source, raw_text, parsed_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET raw_text = excluded.raw_text, parsed_count = excluded.parsed_count`,
		q.ID, q.Level.String(), q.Source, q.RawText, q.ParsedCount, formatTime(q.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save quiz %s: %w", q.ID, err)
	}
	return nil
}

// GetQuiz returns one audited quiz. Returns nil and nil error if the ID is unknown.
func (s *Store) GetQuiz(ctx context.Context, id string) (*model.QuizRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, level, source, raw_text, parsed_count, created_at FROM quizzes WHERE id = ?`, id)
	q, err := scanQuiz(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuizzes returns audited quizzes, newest first.
func (s *Store) ListQuizzes(ctx context.Context, limit int) ([]model.QuizRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, source, raw_text, parsed_count, created_at
		 FROM quizzes ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []model.QuizRecord
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(sc scanner) (model.QuizRecord, error) {
	var (
		q       model.QuizRecord
		level   string
		created string
	)
	if err := sc.Scan(&q.ID, &level, &q.Source, &q.RawText, &q.ParsedCount, &created); err != nil {
		return q, err
	}
	q.Level, _ = model.ParseLevel(level)
	t, err := parseTime(created)
	if err != nil {
		return q, fmt.Errorf("decode quiz time: %w", err)
	}
	q.CreatedAt = t
	return q, nil
}
