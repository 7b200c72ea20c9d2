package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pavelanni/tutor/internal/model"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	return WithLocalizer(context.Background(), NewLocalizer(lang))
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "AppTitle"); got != "Course Tutor" {
		t.Errorf("T(AppTitle) = %q, want 'Course Tutor'", got)
	}
	if got := T(ctx, "GenerateQuiz"); got != "Generate Quiz" {
		t.Errorf("T(GenerateQuiz) = %q, want 'Generate Quiz'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	if got := T(ctx, "AppTitle"); got != "Репетитор по курсу" {
		t.Errorf("T(AppTitle) = %q, want 'Репетитор по курсу'", got)
	}
	if got := T(ctx, "GenerateQuiz"); got != "Создать тест" {
		t.Errorf("T(GenerateQuiz) = %q, want 'Создать тест'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "QuestionsParsed", 1); got != "1 question found." {
		t.Errorf("Tp(QuestionsParsed, 1) = %q", got)
	}
	if got := Tp(ctx, "QuestionsParsed", 5); got != "5 questions found." {
		t.Errorf("Tp(QuestionsParsed, 5) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "ScoreLine", map[string]any{"Correct": 2, "Total": 3, "Percent": 67})
	if got != "Score: 2 / 3 (67%)" {
		t.Errorf("Td(ScoreLine) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestEveryNoticeTranslated(t *testing.T) {
	notices := []model.Notice{
		model.NoticeRateLimited,
		model.NoticeBackendUnavailable,
		model.NoticeNoContent,
		model.NoticeNoQuiz,
		model.NoticeNoQuestions,
		model.NoticeNoData,
		model.NoticeSaveFailed,
		model.NoticeBadInput,
		model.NoticeInternal,
	}
	for _, lang := range []string{"en", "ru"} {
		ctx := initLang(t, lang)
		for _, n := range notices {
			if got := Notice(ctx, n); got == string(n) || got == "" {
				t.Errorf("%s: notice %q has no translation", lang, n)
			}
		}
		if got := Notice(ctx, model.NoticeNone); got != "" {
			t.Errorf("%s: NoticeNone = %q, want empty", lang, got)
		}
	}
}

func TestMiddlewarePicksLanguage(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatal(err)
	}

	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "AskButton")
	}))

	tests := []struct {
		name   string
		cookie string
		accept string
		want   string
	}{
		{"default", "", "", "Ask"},
		{"accept-language", "", "ru-RU,ru;q=0.9", "Спросить"},
		{"cookie wins", "en", "ru", "Ask"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: LangCookie, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
