package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/pavelanni/tutor/internal/content"
	"github.com/pavelanni/tutor/internal/handler/views"
	"github.com/pavelanni/tutor/internal/model"
	"github.com/pavelanni/tutor/internal/quiz"
	"github.com/pavelanni/tutor/internal/stats"
)

const (
	sessionCookieName = "tutor_session"
	sessionIDKey      = "sid"
	levelKey          = "level"
	maxRequestBody    = 20 << 20
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	svc      *quiz.Service
	config   model.TutorConfig
	cookies  *sessions.CookieStore
	sessions *Registry

	groundingMu sync.Mutex
	grounding   *content.Grounding
}

// New creates a new Handler. secret signs the session cookie.
func New(svc *quiz.Service, cfg model.TutorConfig, secret []byte) (*Handler, error) {
	if len(secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.BasePath != "" {
		cookies.Options.Path = cfg.BasePath + "/"
	}
	return &Handler{
		svc:      svc,
		config:   cfg,
		cookies:  cookies,
		sessions: NewRegistry(0),
	}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/api/performance", h.handlePerformanceJSON)

	r.Group(func(r chi.Router) {
		r.Use(limitBody(maxRequestBody))
		r.Use(h.csrfMiddleware)

		r.Get("/", h.handleIndex)
		r.Post("/chat", h.handleChat)
		r.Post("/quiz", h.handleGenerateQuiz)
		r.Post("/quiz/submit", h.handleSubmit)
		r.Post("/content/pptx", h.handleUploadPPTX)
		r.Post("/session/reset", h.handleReset)
		r.Get("/performance", h.handlePerformancePage)
	})
}

// path prefixes p with the configured base path.
func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// session returns the cookie session and the tutor session bound to it,
// assigning a new ID on first visit.
func (h *Handler) session(r *http.Request) (*sessions.Session, *quiz.Session) {
	cs, err := h.cookies.Get(r, sessionCookieName)
	if err != nil {
		slog.Debug("discarding unreadable session cookie", "error", err)
	}
	id, ok := cs.Values[sessionIDKey].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		cs.Values[sessionIDKey] = id
	}
	return cs, h.sessions.Get(id)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, cs *sessions.Session) {
	if err := cs.Save(r, w); err != nil {
		slog.Error("failed to save session cookie", "error", err)
	}
}

// finish flashes a notice (if any) and redirects back to the main page.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, cs *sessions.Session, n model.Notice) {
	if n != model.NoticeNone {
		cs.AddFlash(string(n))
	}
	h.save(w, r, cs)
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

func flashes(cs *sessions.Session) []model.Notice {
	var out []model.Notice
	for _, f := range cs.Flashes() {
		if s, ok := f.(string); ok {
			out = append(out, model.Notice(s))
		}
	}
	return out
}

// groundingFor returns uploaded notes when the session has them, otherwise
// the course folder text, which is read once and cached.
func (h *Handler) groundingFor(ctx context.Context, sess *quiz.Session) (content.Grounding, error) {
	if sess.Notes != "" {
		return content.Load(ctx, "", content.Options{Notes: sess.Notes})
	}

	h.groundingMu.Lock()
	defer h.groundingMu.Unlock()
	if h.grounding != nil {
		return *h.grounding, nil
	}
	g, err := content.Load(ctx, content.CourseDir(h.config.CoursesDir, h.config.Course), content.Options{})
	if err != nil {
		return g, err
	}
	slog.Info("loaded course content", "course", h.config.Course, "source", g.Source, "chars", len(g.Text))
	h.grounding = &g
	return g, nil
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.config.LLMTimeout > 0 {
		return context.WithTimeout(ctx, h.config.LLMTimeout)
	}
	return context.WithCancel(ctx)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	cs, sess := h.session(r)
	notices := flashes(cs)
	level, _ := cs.Values[levelKey].(string)

	sess.Lock()
	defer sess.Unlock()

	g, err := h.groundingFor(r.Context(), sess)
	if err != nil {
		slog.Error("load course content", "error", err)
		notices = append(notices, model.NoticeInternal)
	}

	data := views.IndexData{
		Course:    h.config.Course,
		Source:    string(g.Source),
		NotesName: sess.NotesName,
		History:   sess.History,
		Quiz:      sess.Quiz,
		Report:    sess.Report,
		Notices:   notices,
	}
	data.Level, _ = model.ParseLevel(level)
	if data.Source == "" {
		data.Source = string(content.SourceNone)
	}

	h.save(w, r, cs)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.IndexPage(h.config.BasePath, data).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	cs, sess := h.session(r)
	sess.Lock()
	defer sess.Unlock()

	g, err := h.groundingFor(r.Context(), sess)
	if err != nil {
		h.finish(w, r, cs, quiz.Notice(err))
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	_, err = h.svc.Ask(ctx, sess, g, r.FormValue("question"))
	if err != nil {
		slog.Warn("tutor question failed", "session", sess.ID, "error", err)
	}
	h.finish(w, r, cs, quiz.Notice(err))
}

func (h *Handler) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	cs, sess := h.session(r)

	level, err := model.ParseLevel(r.FormValue("level"))
	if err != nil {
		h.finish(w, r, cs, model.NoticeBadInput)
		return
	}
	cs.Values[levelKey] = level.String()

	sess.Lock()
	defer sess.Unlock()

	g, err := h.groundingFor(r.Context(), sess)
	if err != nil {
		h.finish(w, r, cs, quiz.Notice(err))
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	if _, err := h.svc.GenerateQuiz(ctx, sess, g, level); err != nil {
		slog.Warn("quiz generation failed", "session", sess.ID, "level", level.String(), "error", err)
		h.finish(w, r, cs, quiz.Notice(err))
		return
	}
	h.finish(w, r, cs, model.NoticeNone)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	cs, sess := h.session(r)
	sess.Lock()
	defer sess.Unlock()

	sub, err := h.svc.Submit(r.Context(), sess, r.FormValue("answers"))
	if err != nil {
		h.finish(w, r, cs, quiz.Notice(err))
		return
	}
	slog.Info("quiz graded", "session", sess.ID, "quiz_id", sub.Report.QuizID,
		"correct", sub.Report.CorrectCount, "total", sub.Report.Total)
	if sub.PersistErr != nil {
		h.finish(w, r, cs, model.NoticeSaveFailed)
		return
	}
	h.finish(w, r, cs, model.NoticeNone)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	cs, sess := h.session(r)
	sess.Lock()
	sess.Reset()
	sess.Unlock()
	delete(cs.Values, levelKey)
	h.finish(w, r, cs, model.NoticeNone)
}

func (h *Handler) handlePerformancePage(w http.ResponseWriter, r *http.Request) {
	summary, err := stats.Load(r.Context(), h.svc.Log())
	data := views.PerformanceData{Course: h.config.Course, Summary: summary}
	if err != nil {
		data.NoData = true
		if !errors.Is(err, stats.ErrNoData) {
			slog.Error("read performance log", "error", err)
		}
		data.Notices = []model.Notice{model.NoticeNoData}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.PerformancePage(h.config.BasePath, data).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

type performanceResponse struct {
	stats.Summary
	Percent float64 `json:"percent"`
	NoData  bool    `json:"no_data"`
}

func (h *Handler) handlePerformanceJSON(w http.ResponseWriter, r *http.Request) {
	summary, err := stats.Load(r.Context(), h.svc.Log())
	if err != nil && !errors.Is(err, stats.ErrNoData) {
		slog.Error("read performance log", "error", err)
		http.Error(w, "failed to read performance log", http.StatusInternalServerError)
		return
	}
	resp := performanceResponse{
		Summary: summary,
		Percent: summary.Percent(),
		NoData:  err != nil,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encode performance", "error", err)
	}
}
