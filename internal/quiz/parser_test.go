package quiz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuiz = `Here is your quiz.

1. Bloom's Level 1 (Recall/Knowledge)
Which muscle is the primary knee extensor?
A) Hamstrings
B) Quadriceps
C) Gastrocnemius
D) Sartorius
Correct Answer: B

2. Bloom's Level 3 (Application)
A patient has a pacemaker. Which modality is contraindicated?
A) Ultrasound over the device
B) Cold pack
C) Gait training
D) Active ROM
**Correct Answer: A**

3. Which plane does flexion occur in?
A) Frontal
B) Transverse
C) Sagittal
D) Oblique
Correct Answer: (c).`

func TestParseWellFormed(t *testing.T) {
	qs := Parse(sampleQuiz)
	require.Len(t, qs, 3)

	assert.Equal(t, []string{"Q001", "Q002", "Q003"}, []string{qs[0].ID, qs[1].ID, qs[2].ID})
	assert.Equal(t, []string{"B", "A", "C"}, []string{qs[0].CorrectAnswer, qs[1].CorrectAnswer, qs[2].CorrectAnswer})

	assert.True(t, strings.HasPrefix(qs[0].Body, "Which muscle is the primary knee extensor?"),
		"lookback window is five lines: %q", qs[0].Body)
	assert.Contains(t, qs[0].Body, "D) Sartorius")
	assert.NotContains(t, qs[0].Body, "Here is your quiz")
	assert.Contains(t, qs[1].Body, "pacemaker")
}

func TestParseNBlocks(t *testing.T) {
	for _, n := range []int{1, 3, 5, 12} {
		t.Run(fmt.Sprintf("%d blocks", n), func(t *testing.T) {
			var b strings.Builder
			letters := "ABCD"
			for i := 0; i < n; i++ {
				fmt.Fprintf(&b, "%d. Question number %d?\nA) a\nB) b\nC) c\nD) d\nCorrect Answer: %c\n\n", i+1, i+1, letters[i%4])
			}
			qs := Parse(b.String())
			require.Len(t, qs, n)
			for i, q := range qs {
				assert.Equal(t, fmt.Sprintf("Q%03d", i+1), q.ID)
				assert.Equal(t, string(letters[i%4]), q.CorrectAnswer)
				assert.Contains(t, q.Body, fmt.Sprintf("Question number %d?", i+1))
			}
		})
	}
}

func TestParseNoMarkers(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("Just some prose.\nAnswer: B\ncorrect answer: C\nCORRECT ANSWER: D"))
}

func TestParseMarkerWithoutToken(t *testing.T) {
	raw := "Q one?\nCorrect Answer:\nQ two?\nCorrect Answer: **\nQ three?\nCorrect Answer: D"
	qs := Parse(raw)
	require.Len(t, qs, 1)
	assert.Equal(t, "Q001", qs[0].ID)
	assert.Equal(t, "D", qs[0].CorrectAnswer)
}

func TestParseLineStatus(t *testing.T) {
	lines := []string{"Question?", "Correct Answer:   ", "plain line", "Correct Answer: b"}

	_, status := ParseLine(lines, 1)
	assert.Equal(t, ParseNoToken, status)

	_, status = ParseLine(lines, 2)
	assert.Equal(t, ParseNoMarker, status)

	_, status = ParseLine(lines, 99)
	assert.Equal(t, ParseNoMarker, status)

	q, status := ParseLine(lines, 3)
	assert.Equal(t, ParseOK, status)
	assert.Equal(t, "B", q.CorrectAnswer)
	assert.Empty(t, q.ID)
	assert.Equal(t, "plain line", q.Body, "lookback stops at the previous marker line")
}

func TestParseMarkdownAroundToken(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"bold marker", "**Correct Answer:** B", "B"},
		{"bold marker and token", "**Correct Answer:** **C**", "C"},
		{"dash before token", "Correct Answer: - B", "B"},
		{"spaced parens", "Correct Answer: ( d )", "D"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := Parse("Which muscle extends the knee?\nA) Hams\nB) Quads\n" + tt.line)
			require.Len(t, qs, 1)
			assert.Equal(t, tt.want, qs[0].CorrectAnswer)
			assert.Equal(t, "Which muscle extends the knee?\nA) Hams\nB) Quads", qs[0].Body)
		})
	}
}

func TestParseNonLetterToken(t *testing.T) {
	qs := Parse("Which muscle extends the knee?\nCorrect Answer: Quadriceps")
	require.Len(t, qs, 1)
	assert.Equal(t, "QUADRICEPS", qs[0].CorrectAnswer)
}

func TestParseLookbackBound(t *testing.T) {
	raw := "line 1\nline 2\nline 3\nline 4\nline 5\nline 6\nline 7\nCorrect Answer: A"
	qs := Parse(raw)
	require.Len(t, qs, 1)
	assert.Equal(t, "line 3\nline 4\nline 5\nline 6\nline 7", qs[0].Body)

	// Blank lines count toward the window.
	raw = "far\n\n\n\n\nnear\nCorrect Answer: A"
	qs = Parse(raw)
	require.Len(t, qs, 1)
	assert.Equal(t, "near", qs[0].Body)
}

func TestParseInlinePrefix(t *testing.T) {
	qs := Parse("Which is a contraindication to ultrasound?\nA) Pacemaker B) None - Correct Answer: A")
	require.Len(t, qs, 1)
	assert.Equal(t, "A", qs[0].CorrectAnswer)
	assert.Equal(t, "Which is a contraindication to ultrasound?\nA) Pacemaker B) None", qs[0].Body)
}

func TestParseCRLF(t *testing.T) {
	qs := Parse("Q?\r\nA) x\r\nCorrect Answer: [A]\r\n")
	require.Len(t, qs, 1)
	assert.Equal(t, "A", qs[0].CorrectAnswer)
	assert.Equal(t, "Q?\nA) x", qs[0].Body)
}

func TestParseStatusString(t *testing.T) {
	assert.Equal(t, "ok", ParseOK.String())
	assert.Equal(t, "no-token", ParseNoToken.String())
	assert.Equal(t, "ParseStatus(9)", ParseStatus(9).String())
}
