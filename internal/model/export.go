package model

import "time"

// LogExport is the top-level JSON structure for performance log export.
type LogExport struct {
	Course     string     `json:"course"`
	ExportedAt time.Time  `json:"exported_at"`
	Total      int        `json:"total"`
	Correct    int        `json:"correct"`
	Incorrect  int        `json:"incorrect"`
	Entries    []LogEntry `json:"entries"`
}

// Notice is the message ID of a one-line user-facing notice.
type Notice string

const (
	NoticeNone               Notice = ""
	NoticeRateLimited        Notice = "NoticeRateLimited"
	NoticeBackendUnavailable Notice = "NoticeBackendUnavailable"
	NoticeNoContent          Notice = "NoticeNoContent"
	NoticeNoQuiz             Notice = "NoticeNoQuiz"
	NoticeNoQuestions        Notice = "NoticeNoQuestions"
	NoticeNoData             Notice = "NoticeNoData"
	NoticeSaveFailed         Notice = "NoticeSaveFailed"
	NoticeBadInput           Notice = "NoticeBadInput"
	NoticeInternal           Notice = "NoticeInternal"
)

// NewLogExport builds an export document over entries.
func NewLogExport(course string, entries []LogEntry, now time.Time) LogExport {
	exp := LogExport{
		Course:     course,
		ExportedAt: now,
		Total:      len(entries),
		Entries:    entries,
	}
	for _, e := range entries {
		if e.Correct {
			exp.Correct++
		}
	}
	exp.Incorrect = exp.Total - exp.Correct
	if exp.Entries == nil {
		exp.Entries = []LogEntry{}
	}
	return exp
}
