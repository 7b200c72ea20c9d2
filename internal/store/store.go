package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pavelanni/tutor/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed performance log and quiz audit.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS grading_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id TEXT NOT NULL,
		question_text TEXT NOT NULL,
		user_answer TEXT NOT NULL DEFAULT '',
		correct_answer TEXT NOT NULL,
		correct INTEGER NOT NULL CHECK (correct IN (0, 1)),
		timestamp TEXT NOT NULL,
		quiz_id TEXT NOT NULL DEFAULT '',
		level TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_grading_log_quiz ON grading_log(quiz_id);

	CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		level TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		raw_text TEXT NOT NULL,
		parsed_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds entries to the grading log in one transaction.
// Existing rows are never touched.
func (s *Store) Append(ctx context.Context, entries []model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO grading_log
		 (question_id, question_text, user_answer, correct_answer, correct, timestamp, quiz_id, level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare append: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.QuestionID, e.QuestionText, e.UserAnswer, e.CorrectAnswer,
			boolToInt(e.Correct), formatTime(e.Timestamp), e.QuizID, e.Level.String(),
		); err != nil {
			return fmt.Errorf("insert entry %s: %w", e.QuestionID, err)
		}
	}
	return tx.Commit()
}

// ReadAll returns every log entry in insertion order.
// It returns model.ErrNoData when the log is empty or a row cannot be decoded.
func (s *Store) ReadAll(ctx context.Context) ([]model.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question_text, user_answer, correct_answer, correct, timestamp, quiz_id, level
		 FROM grading_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query grading log: %w", err)
	}
	defer rows.Close()

	var entries []model.LogEntry
	for rows.Next() {
		var (
			e       model.LogEntry
			correct int
			ts      string
			level   string
		)
		if err := rows.Scan(&e.QuestionID, &e.QuestionText, &e.UserAnswer, &e.CorrectAnswer,
			&correct, &ts, &e.QuizID, &level); err != nil {
			return nil, fmt.Errorf("scan grading log: %w", errors.Join(model.ErrNoData, err))
		}
		e.Correct = correct == 1
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("decode timestamp %q: %w", ts, errors.Join(model.ErrNoData, err))
		}
		// Unknown levels decode as the default mode.
		e.Level, _ = model.ParseLevel(level)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, model.ErrNoData
	}
	return entries, nil
}

// Count returns the number of logged answers.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grading_log`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
