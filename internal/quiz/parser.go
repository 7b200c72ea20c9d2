package quiz

import (
	"fmt"
	"strings"

	"github.com/pavelanni/tutor/internal/model"
)

// Marker is the only answer marker the parser recognizes (case-sensitive).
const Marker = model.AnswerMarker

// LookbackLines is how many lines above a marker line form the question body.
const LookbackLines = 5

// tokenTrim is stripped from both ends of an answer token.
const tokenTrim = "*_().:[]-"

// ParseStatus tells why a line did or did not yield a question.
type ParseStatus int

const (
	ParseOK ParseStatus = iota
	// ParseNoMarker means the line has no answer marker.
	ParseNoMarker
	// ParseNoToken means the marker is followed by nothing usable.
	ParseNoToken
)

func (s ParseStatus) String() string {
	switch s {
	case ParseOK:
		return "ok"
	case ParseNoMarker:
		return "no-marker"
	case ParseNoToken:
		return "no-token"
	}
	return fmt.Sprintf("ParseStatus(%d)", int(s))
}

// Parse recovers questions from raw quiz text, one per marker line with an
// answer token, in line order. IDs are assigned Q001, Q002, ...
// Text without markers yields an empty slice.
func Parse(raw string) []model.ParsedQuestion {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	var out []model.ParsedQuestion
	for i := range lines {
		q, status := ParseLine(lines, i)
		if status != ParseOK {
			continue
		}
		q.ID = fmt.Sprintf("Q%03d", len(out)+1)
		out = append(out, q)
	}
	return out
}

// ParseLine inspects lines[i]. On ParseOK the returned question has its body
// and answer set; the ID is left for the caller.
//
// The body is the non-blank lines among the LookbackLines lines above the
// marker, stopping early at a previous marker line, followed by any text in
// front of the marker on its own line.
func ParseLine(lines []string, i int) (model.ParsedQuestion, ParseStatus) {
	if i < 0 || i >= len(lines) {
		return model.ParsedQuestion{}, ParseNoMarker
	}
	line := lines[i]
	idx := strings.Index(line, Marker)
	if idx < 0 {
		return model.ParsedQuestion{}, ParseNoMarker
	}

	token := answerToken(line[idx+len(Marker):])
	if token == "" {
		return model.ParsedQuestion{}, ParseNoToken
	}

	start := max(0, i-LookbackLines)
	for j := i - 1; j >= start; j-- {
		if strings.Contains(lines[j], Marker) {
			start = j + 1
			break
		}
	}

	var body []string
	for _, l := range lines[start:i] {
		if l = strings.TrimSpace(l); l != "" {
			body = append(body, l)
		}
	}
	if prefix := strings.Trim(line[:idx], " \t*_-"); prefix != "" {
		body = append(body, prefix)
	}

	return model.ParsedQuestion{
		Body:          strings.Join(body, "\n"),
		CorrectAnswer: token,
	}, ParseOK
}

// answerToken takes the first field after the marker that is not pure
// markdown or punctuation, and uppercases it. "**Correct Answer:** B" yields
// "B". The token is not checked against A-D.
func answerToken(rest string) string {
	for _, f := range strings.Fields(rest) {
		if t := strings.Trim(f, tokenTrim); t != "" {
			return strings.ToUpper(t)
		}
	}
	return ""
}
