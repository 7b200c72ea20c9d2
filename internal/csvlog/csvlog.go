// Package csvlog stores the performance log as a CSV file with the
// grading_log.csv column layout.
package csvlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pavelanni/tutor/internal/model"
)

// DefaultFile is the conventional log file name.
const DefaultFile = "grading_log.csv"

// Header lists the canonical columns in file order.
var Header = []string{"question_id", "question_text", "user_answer", "correct_answer", "correct", "timestamp"}

// Timestamps without a zone, as older logs wrote them.
const localISO = "2006-01-02T15:04:05.999999999"

// Log is a CSV-file performance log. Appends within one process are serialized.
type Log struct {
	path string
	mu   sync.Mutex
}

// New returns a Log writing to path. The file is created on first append.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the file location.
func (l *Log) Path() string {
	return l.path
}

// Append writes entries after the existing rows, creating the file with its header if needed.
func (l *Log) Append(_ context.Context, entries []model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log: %w", err)
	}

	// A file saved without a final newline would glue the first new row
	// onto its last row.
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			f.Close()
			return fmt.Errorf("read log tail: %w", err)
		}
		if last[0] != '\n' {
			if _, err := f.Write([]byte("\n")); err != nil {
				f.Close()
				return fmt.Errorf("terminate last row: %w", err)
			}
		}
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			f.Close()
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, e := range entries {
		if err := w.Write(encode(e)); err != nil {
			f.Close()
			return fmt.Errorf("write entry %s: %w", e.QuestionID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush log: %w", err)
	}
	return f.Close()
}

// ReadAll returns every row in file order. A missing, empty or malformed file
// yields model.ErrNoData.
func (l *Log) ReadAll(_ context.Context) ([]model.LogEntry, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	entries, err := Read(f)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, model.ErrNoData
	}
	return entries, nil
}

// Export builds an export document from the whole file.
func (l *Log) Export(ctx context.Context, course string) (model.LogExport, error) {
	entries, err := l.ReadAll(ctx)
	if err != nil && !errors.Is(err, model.ErrNoData) {
		return model.LogExport{}, err
	}
	return model.NewLogExport(course, entries, time.Now()), nil
}

// Read decodes a CSV log. Columns are located by header name, so extra
// columns are ignored. Decoding failures wrap model.ErrNoData.
func Read(r io.Reader) ([]model.LogEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse log: %w", errors.Join(model.ErrNoData, err))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		idx[name] = i
	}
	for _, col := range Header {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q: %w", col, model.ErrNoData)
		}
	}

	entries := make([]model.LogEntry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		e, err := decode(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, errors.Join(model.ErrNoData, err))
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Write encodes entries with the canonical header.
func Write(w io.Writer, entries []model.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(encode(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encode(e model.LogEntry) []string {
	correct := "0"
	if e.Correct {
		correct = "1"
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return []string{
		e.QuestionID,
		e.QuestionText,
		e.UserAnswer,
		e.CorrectAnswer,
		correct,
		ts.Format(time.RFC3339Nano),
	}
}

func decode(row []string, idx map[string]int) (model.LogEntry, error) {
	field := func(name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var e model.LogEntry
	e.QuestionID = field("question_id")
	e.QuestionText = field("question_text")
	e.UserAnswer = field("user_answer")
	e.CorrectAnswer = field("correct_answer")

	correct, err := strconv.ParseBool(field("correct"))
	if err != nil {
		return e, fmt.Errorf("correct column: %w", err)
	}
	e.Correct = correct

	ts := field("timestamp")
	if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		if e.Timestamp, err = time.ParseInLocation(localISO, ts, time.Local); err != nil {
			return e, fmt.Errorf("timestamp column: %w", err)
		}
	}
	return e, nil
}
