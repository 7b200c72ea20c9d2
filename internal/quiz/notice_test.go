package quiz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pavelanni/tutor/internal/content"
	"github.com/pavelanni/tutor/internal/llm"
	"github.com/pavelanni/tutor/internal/model"
)

func TestNotice(t *testing.T) {
	tests := []struct {
		err  error
		want model.Notice
	}{
		{nil, model.NoticeNone},
		{ErrEmptyGrounding, model.NoticeNoContent},
		{ErrNoQuiz, model.NoticeNoQuiz},
		{ErrNoQuestions, model.NoticeNoQuestions},
		{fmt.Errorf("read: %w", model.ErrNoData), model.NoticeNoData},
		{ErrEmptyQuestion, model.NoticeBadInput},
		{fmt.Errorf("upload: %w", content.ErrNotPPTX), model.NoticeBadInput},
		{fmt.Errorf("ask tutor: %w", &llm.ErrRateLimit{}), model.NoticeRateLimited},
		{&llm.ErrInvalidResponse{Err: errors.New("empty")}, model.NoticeBackendUnavailable},
		{&llm.ErrProviderUnavailable{}, model.NoticeBackendUnavailable},
		{errors.New("template exploded"), model.NoticeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Notice(tt.err), "error: %v", tt.err)
	}
}
