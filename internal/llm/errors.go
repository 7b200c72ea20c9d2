package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/tutor/internal/model"
)

// ErrRateLimit indicates the backend returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the backend answered with something unusable
// (no choices, no text).
type ErrInvalidResponse struct {
	Err error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the backend is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Classify maps a backend error to the notice shown to the user.
// Malformed responses share the generic "unavailable" notice.
func Classify(err error) model.Notice {
	if err == nil {
		return model.NoticeNone
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return model.NoticeRateLimited
	}
	return model.NoticeBackendUnavailable
}
