package quiz

import (
	"errors"

	"github.com/pavelanni/tutor/internal/content"
	"github.com/pavelanni/tutor/internal/llm"
	"github.com/pavelanni/tutor/internal/model"
)

// Notice maps a pipeline error to the one-line notice shown to the user.
func Notice(err error) model.Notice {
	switch {
	case err == nil:
		return model.NoticeNone
	case errors.Is(err, ErrEmptyGrounding):
		return model.NoticeNoContent
	case errors.Is(err, ErrNoQuiz):
		return model.NoticeNoQuiz
	case errors.Is(err, ErrNoQuestions):
		return model.NoticeNoQuestions
	case errors.Is(err, model.ErrNoData):
		return model.NoticeNoData
	case errors.Is(err, ErrEmptyQuestion), errors.Is(err, content.ErrNotPPTX):
		return model.NoticeBadInput
	}
	var (
		rl   *llm.ErrRateLimit
		inv  *llm.ErrInvalidResponse
		unav *llm.ErrProviderUnavailable
	)
	if errors.As(err, &rl) || errors.As(err, &inv) || errors.As(err, &unav) {
		return llm.Classify(err)
	}
	return model.NoticeInternal
}
