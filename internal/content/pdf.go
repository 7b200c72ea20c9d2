package content

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultPDFTimeout = 2 * time.Minute
	maxPDFWorkers     = 4
)

// extractPDFs runs extract over every file concurrently and joins the
// results in file order. Files that fail are logged and skipped.
func extractPDFs(ctx context.Context, paths []string, extract func(context.Context, string) (string, error)) (string, error) {
	texts := make([]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPDFWorkers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			txt, err := extract(gctx, p)
			if err != nil {
				slog.Warn("skipping pdf", "file", filepath.Base(p), "error", err)
				return nil
			}
			texts[i] = txt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var parts []string
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func pdfExtractor(timeout time.Duration) func(context.Context, string) (string, error) {
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}
	return func(ctx context.Context, path string) (string, error) {
		return pdfToText(ctx, path, timeout)
	}
}

// pdfToText shells out to poppler's pdftotext.
func pdfToText(ctx context.Context, pdfPath string, timeout time.Duration) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not found in PATH: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "tutor_pdftotext_*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "out.txt")
	cmd := exec.CommandContext(callCtx, "pdftotext", "-enc", "UTF-8", "-q", pdfPath, outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			return "", fmt.Errorf("pdftotext: %w; stderr=%s", err, s)
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("read pdftotext output: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
