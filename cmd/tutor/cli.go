package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/tutor/internal/content"
	"github.com/pavelanni/tutor/internal/csvlog"
	appI18n "github.com/pavelanni/tutor/internal/i18n"
	"github.com/pavelanni/tutor/internal/model"
	"github.com/pavelanni/tutor/internal/quiz"
	"github.com/pavelanni/tutor/internal/stats"
)

const barWidth = 40

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the tutor one question about the course content",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	f := cmd.Flags()
	f.String("pptx", "", "Use the speaker notes of this PPTX file as course content")
	addLogFlags(f)
	addLLMFlags(f)
	addCourseFlags(f)
	return cmd
}

func quizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a quiz, read answers from stdin and record the score",
		Args:  cobra.NoArgs,
		RunE:  runQuiz,
	}
	f := cmd.Flags()
	f.String("level", "", "Bloom's taxonomy level (1-5, mixed, or empty for the default 3 questions)")
	f.String("pptx", "", "Use the speaker notes of this PPTX file as course content")
	addLogFlags(f)
	addLLMFlags(f)
	addCourseFlags(f)
	addStorageFlags(f)
	return cmd
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print performance totals",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	f := cmd.Flags()
	addLogFlags(f)
	addStorageFlags(f)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the performance log as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("format", "json", "Output format (json, csv)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("course", "c", "PTA_1010", "Course name included in JSON output")
	addLogFlags(f)
	addStorageFlags(f)
	return cmd
}

// cliEnv is what every CLI command sets up before doing its work.
type cliEnv struct {
	v   *viper.Viper
	ctx context.Context
	out io.Writer
}

func newCLIEnv(cmd *cobra.Command) (*cliEnv, context.CancelFunc, error) {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return nil, nil, fmt.Errorf("init i18n: %w", err)
	}
	ctx, stop := signalContext(cmd)
	ctx = appI18n.WithLocalizer(ctx, appI18n.NewLocalizer(v.GetString("lang")))
	return &cliEnv{v: v, ctx: ctx, out: cmd.OutOrStdout()}, stop, nil
}

// notice prints the localized notice for err, if any, and returns err.
func (e *cliEnv) notice(err error) error {
	if n := quiz.Notice(err); n != model.NoticeNone {
		fmt.Fprintln(os.Stderr, appI18n.Notice(e.ctx, n))
	}
	return err
}

// grounding loads the course content, preferring the notes of --pptx.
func (e *cliEnv) grounding(cfg model.TutorConfig) (content.Grounding, error) {
	var opts content.Options
	if path := e.v.GetString("pptx"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return content.Grounding{}, fmt.Errorf("read pptx: %w", err)
		}
		notes, err := content.NotesFromPPTX(data)
		if err != nil {
			return content.Grounding{}, fmt.Errorf("read pptx notes: %w", err)
		}
		opts.Notes = notes
	}
	return content.Load(e.ctx, content.CourseDir(cfg.CoursesDir, cfg.Course), opts)
}

func (e *cliEnv) withTimeout(cfg model.TutorConfig) (context.Context, context.CancelFunc) {
	if cfg.LLMTimeout > 0 {
		return context.WithTimeout(e.ctx, cfg.LLMTimeout)
	}
	return context.WithCancel(e.ctx)
}

func runAsk(cmd *cobra.Command, args []string) error {
	env, stop, err := newCLIEnv(cmd)
	if err != nil {
		return err
	}
	defer stop()

	cfg, err := tutorConfig(env.v)
	if err != nil {
		return err
	}
	g, err := env.grounding(cfg)
	if err != nil {
		return err
	}
	backend, err := newBackend(env.ctx, env.v)
	if err != nil {
		return err
	}
	// Chat does not touch the performance log.
	svc, err := quiz.NewService(backend, nil, quiz.WithEmptyContext(cfg.EmptyContext))
	if err != nil {
		return err
	}

	ctx, cancel := env.withTimeout(cfg)
	defer cancel()
	reply, err := svc.Ask(ctx, quiz.NewSession(), g, strings.Join(args, " "))
	if err != nil {
		return env.notice(err)
	}
	fmt.Fprintln(env.out, reply)
	return nil
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	env, stop, err := newCLIEnv(cmd)
	if err != nil {
		return err
	}
	defer stop()

	cfg, err := tutorConfig(env.v)
	if err != nil {
		return err
	}
	level, err := model.ParseLevel(env.v.GetString("level"))
	if err != nil {
		return err
	}
	g, err := env.grounding(cfg)
	if err != nil {
		return err
	}
	backend, err := newBackend(env.ctx, env.v)
	if err != nil {
		return err
	}
	plog, err := openLog(env.v)
	if err != nil {
		return err
	}
	defer plog.close()
	svc, err := newService(backend, plog, cfg)
	if err != nil {
		return err
	}

	sess := quiz.NewSession()
	ctx, cancel := env.withTimeout(cfg)
	defer cancel()
	cur, err := svc.GenerateQuiz(ctx, sess, g, level)
	if cur != nil {
		fmt.Fprintln(env.out, cur.RawText)
		fmt.Fprintln(env.out)
	}
	if err != nil {
		return env.notice(err)
	}

	fmt.Fprintf(env.out, "%s ", appI18n.T(env.ctx, "AnswersLabel"))
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read answers: %w", err)
	}

	sub, err := svc.Submit(env.ctx, sess, line)
	if err != nil {
		return env.notice(err)
	}
	printReport(env, sub.Report)
	if sub.PersistErr != nil {
		fmt.Fprintln(os.Stderr, appI18n.Notice(env.ctx, model.NoticeSaveFailed))
	}
	return nil
}

func printReport(env *cliEnv, r model.GradeReport) {
	fmt.Fprintln(env.out, appI18n.Td(env.ctx, "ScoreLine", map[string]any{
		"Correct": r.CorrectCount,
		"Total":   r.Total,
		"Percent": int(r.Score()*100 + 0.5),
	}))
	for _, res := range r.Results {
		mark := "x"
		if res.IsCorrect {
			mark = "+"
		}
		submitted := res.Submitted
		if submitted == "" {
			submitted = appI18n.T(env.ctx, "NoAnswer")
		}
		fmt.Fprintf(env.out, "[%s] %s  %s: %s  %s: %s\n", mark, res.Question.ID,
			appI18n.T(env.ctx, "YourAnswer"), submitted,
			appI18n.T(env.ctx, "CorrectAnswer"), res.Correct)
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	env, stop, err := newCLIEnv(cmd)
	if err != nil {
		return err
	}
	defer stop()

	plog, err := openLog(env.v)
	if err != nil {
		return err
	}
	defer plog.close()

	s, err := stats.Load(env.ctx, plog)
	if errors.Is(err, stats.ErrNoData) {
		fmt.Fprintln(env.out, appI18n.Notice(env.ctx, model.NoticeNoData))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(env.out, appI18n.Td(env.ctx, "TotalAnswered", map[string]any{"Count": s.Total}))
	fmt.Fprintf(env.out, "%s: %d\n", appI18n.T(env.ctx, "CorrectLabel"), s.Correct)
	fmt.Fprintf(env.out, "%s: %d\n", appI18n.T(env.ctx, "IncorrectLabel"), s.Incorrect)
	fmt.Fprintf(env.out, "[%s] %.1f%%\n", s.Bar(barWidth), s.Percent())
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	env, stop, err := newCLIEnv(cmd)
	if err != nil {
		return err
	}
	defer stop()

	plog, err := openLog(env.v)
	if err != nil {
		return err
	}
	defer plog.close()

	export, err := plog.export(env.ctx, env.v.GetString("course"))
	if err != nil {
		return fmt.Errorf("export log: %w", err)
	}

	outPath := env.v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = env.out
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(env.v.GetString("format")) {
	case "csv":
		if err := csvlog.Write(w, export.Entries); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	case "json":
		data, err := json.MarshalIndent(export, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		// Ensure trailing newline.
		_, _ = fmt.Fprintln(w)
	default:
		return fmt.Errorf("unknown format %q: want json or csv", env.v.GetString("format"))
	}
	return nil
}
