// Package content assembles the bounded course text that grounds every
// tutor and quiz request.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxGroundingChars bounds the grounding text sent to the model.
const MaxGroundingChars = 3000

// Source names where the grounding text came from.
type Source string

const (
	SourceNone Source = "none"
	SourcePPTX Source = "pptx"
	SourceText Source = "txt"
	SourcePDF  Source = "pdf"
)

// Grounding is the course text handed to the model.
type Grounding struct {
	Text   string
	Source Source
}

// Empty reports whether there is no usable text.
func (g Grounding) Empty() bool {
	return strings.TrimSpace(g.Text) == ""
}

// Options tune Load.
type Options struct {
	// Notes is uploaded slide-notes text; when non-empty it wins over files.
	Notes string
	// MaxChars overrides MaxGroundingChars when positive.
	MaxChars int
	// PDFTimeout bounds each pdftotext run.
	PDFTimeout time.Duration
	// PDFText replaces the pdftotext extractor, mainly in tests.
	PDFText func(ctx context.Context, path string) (string, error)
}

// CourseDir returns the folder holding one course's materials.
func CourseDir(root, course string) string {
	return filepath.Join(root, course)
}

// Load selects the grounding text: uploaded notes first, then the first
// .txt file in dir, then the text of every .pdf in dir. A missing dir is
// not an error; it yields an empty grounding with SourceNone.
func Load(ctx context.Context, dir string, opts Options) (Grounding, error) {
	limit := opts.MaxChars
	if limit <= 0 {
		limit = MaxGroundingChars
	}

	if strings.TrimSpace(opts.Notes) != "" {
		return Grounding{Text: Truncate(opts.Notes, limit), Source: SourcePPTX}, nil
	}

	txtFiles, pdfFiles, err := listCourseFiles(dir)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("course folder not found", "dir", dir)
		return Grounding{Source: SourceNone}, nil
	}
	if err != nil {
		return Grounding{Source: SourceNone}, fmt.Errorf("list course folder: %w", err)
	}

	if len(txtFiles) > 0 {
		b, err := os.ReadFile(txtFiles[0])
		if err != nil {
			return Grounding{Source: SourceNone}, fmt.Errorf("read %s: %w", txtFiles[0], err)
		}
		if text := strings.TrimSpace(string(b)); text != "" {
			return Grounding{Text: Truncate(text, limit), Source: SourceText}, nil
		}
	}

	if len(pdfFiles) > 0 {
		extract := opts.PDFText
		if extract == nil {
			extract = pdfExtractor(opts.PDFTimeout)
		}
		text, err := extractPDFs(ctx, pdfFiles, extract)
		if err != nil {
			return Grounding{Source: SourceNone}, err
		}
		if text != "" {
			return Grounding{Text: Truncate(text, limit), Source: SourcePDF}, nil
		}
	}

	return Grounding{Source: SourceNone}, nil
}

func listCourseFiles(dir string) (txt, pdf []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch strings.ToLower(filepath.Ext(name)) {
		case ".txt":
			txt = append(txt, filepath.Join(dir, name))
		case ".pdf":
			pdf = append(pdf, filepath.Join(dir, name))
		}
	}
	sort.Strings(txt)
	sort.Strings(pdf)
	return txt, pdf, nil
}

// Truncate returns at most max characters of text, cutting on a rune boundary.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}
