// Package stats folds the performance log into totals.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pavelanni/tutor/internal/model"
)

// ErrNoData is model.ErrNoData, re-exported for callers that only import stats.
var ErrNoData = model.ErrNoData

// Reader is the read side of the performance log.
type Reader interface {
	ReadAll(ctx context.Context) ([]model.LogEntry, error)
}

// Summary counts answered questions. Total always equals Correct + Incorrect.
type Summary struct {
	Total     int `json:"total"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Summarize counts entries. An empty log gives an all-zero summary.
func Summarize(entries []model.LogEntry) Summary {
	var s Summary
	for _, e := range entries {
		if e.Correct {
			s.Correct++
		}
	}
	s.Total = len(entries)
	s.Incorrect = s.Total - s.Correct
	return s
}

// Load reads the whole log and summarizes it. When the log has no data the
// zero summary is returned together with ErrNoData.
func Load(ctx context.Context, r Reader) (Summary, error) {
	entries, err := r.ReadAll(ctx)
	if errors.Is(err, model.ErrNoData) {
		return Summary{}, ErrNoData
	}
	if err != nil {
		return Summary{}, fmt.Errorf("read performance log: %w", err)
	}
	return Summarize(entries), nil
}

// Percent returns the share of correct answers in 0..100.
func (s Summary) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) * 100 / float64(s.Total)
}

// Bar renders the correct/incorrect split as a text bar of the given width,
// '#' for correct and '.' for incorrect.
func (s Summary) Bar(width int) string {
	if width <= 0 || s.Total == 0 {
		return ""
	}
	filled := (s.Correct*width + s.Total/2) / s.Total
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

// Counts returns one bar height per outcome, in the order correct, incorrect.
func (s Summary) Counts() []Count {
	return []Count{
		{Label: "correct", Value: s.Correct},
		{Label: "incorrect", Value: s.Incorrect},
	}
}

// Count is one labeled bar of the performance chart.
type Count struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Scale returns Value as a fraction of max in 0..1, for drawing bars.
func (c Count) Scale(max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(c.Value) / float64(max)
}
