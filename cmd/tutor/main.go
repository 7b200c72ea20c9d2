package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pavelanni/tutor/internal/csvlog"
	"github.com/pavelanni/tutor/internal/handler"
	appI18n "github.com/pavelanni/tutor/internal/i18n"
	"github.com/pavelanni/tutor/internal/llm"
	"github.com/pavelanni/tutor/internal/model"
	"github.com/pavelanni/tutor/internal/quiz"
	"github.com/pavelanni/tutor/internal/store"
)

//go:generate templ generate -path ../../internal/handler/views

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tutor",
		Short:        "Course-grounded tutor and NPTE-style quiz generator",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, askCmd(), quizCmd(), statsCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `tutor --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP tutor server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /tutor)")
	f.Bool("secure-cookies", true, "Set Secure flag on cookies")
	f.String("session-secret", "", "Key for signing session cookies, at least 32 bytes (or set TUTOR_SESSION_SECRET)")
	addLogFlags(f)
	addLLMFlags(f)
	addCourseFlags(f)
	addStorageFlags(f)
	return cmd
}

// addLogFlags registers logging and UI language flags shared by every command.
func addLogFlags(f *pflag.FlagSet) {
	f.StringP("lang", "l", "en", "UI language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func addLLMFlags(f *pflag.FlagSet) {
	f.String("provider", "openai", "LLM provider (openai, anthropic, gemini, mock)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.Duration("llm-timeout", 60*time.Second, "Deadline for one LLM request (0 = none)")
}

func addCourseFlags(f *pflag.FlagSet) {
	f.String("courses-dir", "courses", "Folder holding one sub-folder per course")
	f.StringP("course", "c", "PTA_1010", "Course folder name")
	f.String("empty-context", string(model.EmptyContextBlock), "What to do without course content (block, allow)")
}

func addStorageFlags(f *pflag.FlagSet) {
	f.String("log-backend", "sqlite", "Performance log backend (sqlite, csv)")
	f.String("db", "tutor.db", "SQLite database path")
	f.String("csv-log", csvlog.DefaultFile, "CSV performance log path")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("TUTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("tutor")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/tutor")
	v.AddConfigPath("/etc/tutor")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func tutorConfig(v *viper.Viper) (model.TutorConfig, error) {
	policy := model.EmptyContextPolicy(strings.ToLower(strings.TrimSpace(v.GetString("empty-context"))))
	switch policy {
	case model.EmptyContextBlock, model.EmptyContextAllow:
	default:
		return model.TutorConfig{}, fmt.Errorf("invalid empty-context %q: want block or allow", policy)
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	return model.TutorConfig{
		CoursesDir:    v.GetString("courses-dir"),
		Course:        v.GetString("course"),
		EmptyContext:  policy,
		LLMTimeout:    v.GetDuration("llm-timeout"),
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		Lang:          v.GetString("lang"),
	}, nil
}

// performanceLog is the storage behind the quiz pipeline.
type performanceLog struct {
	quiz.PerformanceLog
	audit  quiz.QuizAuditor
	export func(ctx context.Context, course string) (model.LogExport, error)
	close  func() error
}

func openLog(v *viper.Viper) (*performanceLog, error) {
	switch strings.ToLower(v.GetString("log-backend")) {
	case "", "sqlite":
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &performanceLog{PerformanceLog: db, audit: db, export: db.ExportLog, close: db.Close}, nil
	case "csv":
		l := csvlog.New(v.GetString("csv-log"))
		return &performanceLog{PerformanceLog: l, export: l.Export, close: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unknown log-backend %q: want sqlite or csv", v.GetString("log-backend"))
	}
}

func newBackend(ctx context.Context, v *viper.Viper) (llm.Backend, error) {
	b, err := llm.New(ctx, llm.Config{
		Provider: v.GetString("provider"),
		BaseURL:  v.GetString("llm-url"),
		APIKey:   v.GetString("llm-key"),
		Model:    v.GetString("llm-model"),
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}
	return b, nil
}

func newService(backend llm.Backend, plog *performanceLog, cfg model.TutorConfig) (*quiz.Service, error) {
	opts := []quiz.Option{quiz.WithEmptyContext(cfg.EmptyContext)}
	if plog.audit != nil {
		opts = append(opts, quiz.WithAuditor(plog.audit))
	}
	return quiz.NewService(backend, plog, opts...)
}

func sessionSecret(v *viper.Viper) ([]byte, error) {
	if s := v.GetString("session-secret"); s != "" {
		return []byte(s), nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	slog.Warn("no session-secret set, using a random key; sessions end on restart")
	return secret, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	ctx, stop := signalContext(cmd)
	defer stop()

	cfg, err := tutorConfig(v)
	if err != nil {
		return err
	}

	plog, err := openLog(v)
	if err != nil {
		return err
	}
	defer plog.close()

	// Initialize i18n.
	if err := appI18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	backend, err := newBackend(ctx, v)
	if err != nil {
		return err
	}
	if err := llm.Ping(ctx, backend); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK", "provider", v.GetString("provider"), "model", backend.ModelID())

	svc, err := newService(backend, plog, cfg)
	if err != nil {
		return err
	}
	secret, err := sessionSecret(v)
	if err != nil {
		return err
	}
	h, err := handler.New(svc, cfg, secret)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(cfg.Lang))

	if cfg.BasePath != "" {
		r.Route(cfg.BasePath, h.Routes)
		r.Get(cfg.BasePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, cfg.BasePath+"/", http.StatusMovedPermanently)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting server",
		"addr", addr,
		"course", cfg.Course,
		"courses_dir", cfg.CoursesDir,
		"log_backend", v.GetString("log-backend"),
		"lang", cfg.Lang,
		"empty_context", cfg.EmptyContext,
		"base_path", cfg.BasePath,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
