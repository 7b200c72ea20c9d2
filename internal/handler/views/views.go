// Package views renders the tutor's HTML pages as templ components.
//
// The *_templ.go files are generated from the .templ sources by `templ generate`.
package views

import (
	"context"
	"fmt"
	"math"

	appI18n "github.com/pavelanni/tutor/internal/i18n"
	"github.com/pavelanni/tutor/internal/model"
	"github.com/pavelanni/tutor/internal/quiz"
	"github.com/pavelanni/tutor/internal/stats"
)

// IndexData is everything the main page shows.
type IndexData struct {
	Course    string
	Source    string
	NotesName string
	History   []model.ChatMessage
	Quiz      *quiz.CurrentQuiz
	Report    *model.GradeReport
	Level     model.TaxonomyLevel
	Notices   []model.Notice
}

// LevelOption is one entry of the taxonomy level selector.
type LevelOption struct {
	Value    string
	Label    string
	Selected bool
}

// PerformanceData is the performance summary page.
type PerformanceData struct {
	Course  string
	Summary stats.Summary
	NoData  bool
	Notices []model.Notice
}

func levelOptions(ctx context.Context, selected model.TaxonomyLevel) []LevelOption {
	opts := []LevelOption{{
		Value:    model.LevelNone.String(),
		Label:    appI18n.T(ctx, "LevelDefault"),
		Selected: selected == model.LevelNone,
	}}
	for _, l := range model.Levels {
		opts = append(opts, LevelOption{
			Value:    l.String(),
			Label:    fmt.Sprintf("%d (%s)", int(l), l.Name()),
			Selected: selected == l,
		})
	}
	return append(opts, LevelOption{
		Value:    model.LevelMixed.String(),
		Label:    appI18n.T(ctx, "LevelMixed"),
		Selected: selected == model.LevelMixed,
	})
}

func t(ctx context.Context, id string) string {
	return appI18n.T(ctx, id)
}

func sourceLine(ctx context.Context, source string) string {
	return appI18n.Td(ctx, "ContentSource", map[string]any{"Source": appI18n.T(ctx, "Source_"+source)})
}

func scoreLine(ctx context.Context, r *model.GradeReport) string {
	return appI18n.Td(ctx, "ScoreLine", map[string]any{
		"Correct": r.CorrectCount,
		"Total":   r.Total,
		"Percent": percent(r),
	})
}

func speaker(ctx context.Context, role model.Role) string {
	if role == model.RoleUser {
		return appI18n.T(ctx, "You")
	}
	return appI18n.T(ctx, "Tutor")
}

func submitted(ctx context.Context, r model.GradedResult) string {
	if r.Submitted == "" {
		return appI18n.T(ctx, "NoAnswer")
	}
	return r.Submitted
}

func resultClass(r model.GradedResult) string {
	if r.IsCorrect {
		return "ok"
	}
	return "bad"
}

func path(basePath, s string) string {
	return basePath + s
}

// percent returns the report score as a whole percentage.
func percent(r *model.GradeReport) int {
	if r == nil {
		return 0
	}
	return int(math.Round(r.Score() * 100))
}

// barStyle sizes a bar as a percentage of total.
func barStyle(c stats.Count, total int) string {
	return fmt.Sprintf("width: %d%%", int(math.Round(c.Scale(total)*100)))
}
