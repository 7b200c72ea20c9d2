package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/tutor/internal/model"
)

type fakeReader struct {
	entries []model.LogEntry
	err     error
}

func (f fakeReader) ReadAll(context.Context) ([]model.LogEntry, error) {
	return f.entries, f.err
}

func entries(correct ...int) []model.LogEntry {
	out := make([]model.LogEntry, len(correct))
	for i, c := range correct {
		out[i] = model.LogEntry{QuestionID: "Q", Correct: c == 1}
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   []model.LogEntry
		want Summary
	}{
		{"empty", nil, Summary{}},
		{"mixed", entries(1, 0, 1, 1, 0), Summary{Total: 5, Correct: 3, Incorrect: 2}},
		{"all correct", entries(1, 1), Summary{Total: 2, Correct: 2}},
		{"all wrong", entries(0, 0, 0), Summary{Total: 3, Incorrect: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Total, got.Correct+got.Incorrect)
		})
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	s, err := Load(ctx, fakeReader{entries: entries(1, 0, 1, 1, 0)})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 5, Correct: 3, Incorrect: 2}, s)

	s, err = Load(ctx, fakeReader{err: model.ErrNoData})
	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, Summary{}, s)

	_, err = Load(ctx, fakeReader{err: errors.New("permission denied")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestPercentAndBar(t *testing.T) {
	s := Summary{Total: 5, Correct: 3, Incorrect: 2}
	assert.InDelta(t, 60.0, s.Percent(), 0.001)
	assert.Equal(t, "######....", s.Bar(10))
	assert.Equal(t, "", Summary{}.Bar(10))
	assert.Zero(t, Summary{}.Percent())
	assert.Equal(t, "##", Summary{Total: 1, Correct: 1}.Bar(2))
}

func TestCounts(t *testing.T) {
	c := Summary{Total: 4, Correct: 3, Incorrect: 1}.Counts()
	require.Len(t, c, 2)
	assert.Equal(t, "correct", c[0].Label)
	assert.Equal(t, 3, c[0].Value)
	assert.InDelta(t, 0.75, c[0].Scale(4), 0.001)
	assert.Zero(t, c[1].Scale(0))
}
