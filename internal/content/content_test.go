package content

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

const slideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
%s
</p:spTree></p:cSld></p:sld>`

const notesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image"/><p:cNvSpPr/><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr></p:sp>
<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes"/><p:cNvSpPr/><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>
<p:txBody><a:bodyPr/>%s</p:txBody></p:sp>
<p:sp><p:nvSpPr><p:cNvPr id="4" name="Num"/><p:cNvSpPr/><p:nvPr><p:ph type="sldNum" idx="5"/></p:nvPr></p:nvSpPr>
<p:txBody><a:bodyPr/><a:p><a:r><a:t>7</a:t></a:r></a:p></p:txBody></p:sp>
</p:spTree></p:cSld></p:notes>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide%d.xml"/>
</Relationships>`

func titleShape(title string) string {
	return `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>` +
		`<p:txBody><a:bodyPr/><a:p><a:r><a:t>` + title + `</a:t></a:r></a:p></p:txBody></p:sp>`
}

func paragraphs(lines ...string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("<a:p><a:r><a:t>" + l + "</a:t></a:r></a:p>")
	}
	return b.String()
}

type testSlide struct {
	title string
	notes []string
}

func buildPPTX(t *testing.T, slides []testSlide) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("[Content_Types].xml", `<Types/>`)
	for i, s := range slides {
		n := i + 1
		shapes := ""
		if s.title != "" {
			shapes = titleShape(s.title)
		}
		write(fmt.Sprintf("ppt/slides/slide%d.xml", n), fmt.Sprintf(slideXML, shapes))
		if s.notes != nil {
			write(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), fmt.Sprintf(relsXML, n))
			write(fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", n), fmt.Sprintf(notesXML, paragraphs(s.notes...)))
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestNotesFromPPTX(t *testing.T) {
	var slides []testSlide
	slides = append(slides,
		testSlide{title: "Knee Anatomy", notes: []string{"Quadriceps extend the knee.", "Hamstrings flex it."}},
		testSlide{notes: []string{"Untitled slide notes."}},
		testSlide{title: "No Notes"},
	)
	// Ten more slides to check numeric ordering (slide10 after slide9).
	for i := 4; i <= 12; i++ {
		slides = append(slides, testSlide{title: fmt.Sprintf("Topic %d", i), notes: []string{fmt.Sprintf("note %d", i)}})
	}

	got, err := NotesFromPPTX(buildPPTX(t, slides))
	if err != nil {
		t.Fatalf("NotesFromPPTX: %v", err)
	}

	wantPrefix := "Knee Anatomy:\nQuadriceps extend the knee.\nHamstrings flex it.\n\n" +
		"Slide 2:\nUntitled slide notes.\n\n" +
		"No Notes:\n\n\n" +
		"Topic 4:\nnote 4\n"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Errorf("notes prefix mismatch:\ngot:\n%q\nwant prefix:\n%q", got, wantPrefix)
	}
	if strings.Index(got, "Topic 9:") > strings.Index(got, "Topic 10:") {
		t.Error("slides should be ordered numerically")
	}
}

func TestNotesFromPPTXInvalid(t *testing.T) {
	_, err := NotesFromPPTX([]byte("not a zip"))
	if !errors.Is(err, ErrNotPPTX) {
		t.Errorf("expected ErrNotPPTX, got %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.Create("word/document.xml")
	zw.Close()
	_, err = NotesFromPPTX(buf.Bytes())
	if !errors.Is(err, ErrNotPPTX) {
		t.Errorf("expected ErrNotPPTX for zip without slides, got %v", err)
	}
}

func TestNotesFromPPTXOversizedPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("ppt/slides/slide1.xml")
	if err != nil {
		t.Fatal(err)
	}
	// Highly compressible padding: tiny on disk, too large once inflated.
	padding := bytes.Repeat([]byte(" "), MaxPartSize+1)
	if _, err := w.Write([]byte(fmt.Sprintf(slideXML, string(padding)))); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() >= MaxPartSize {
		t.Fatalf("compressed archive unexpectedly large: %d bytes", buf.Len())
	}

	_, err = NotesFromPPTX(buf.Bytes())
	if !errors.Is(err, ErrNotPPTX) {
		t.Errorf("expected ErrNotPPTX for oversized part, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdef", 5, "abcde"},
		{"runes", "ééééé", 3, "ééé"},
		{"zero", "abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.text, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.text, tt.max, got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func fakePDF(texts map[string]string) func(context.Context, string) (string, error) {
	return func(_ context.Context, p string) (string, error) {
		txt, ok := texts[filepath.Base(p)]
		if !ok {
			return "", errors.New("unreadable pdf")
		}
		return txt, nil
	}
}

func TestLoadPriority(t *testing.T) {
	ctx := context.Background()
	pdfs := fakePDF(map[string]string{"a.pdf": "pdf one", "b.pdf": "pdf two"})

	t.Run("missing folder", func(t *testing.T) {
		g, err := Load(ctx, filepath.Join(t.TempDir(), "nope"), Options{PDFText: pdfs})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if g.Source != SourceNone || !g.Empty() {
			t.Errorf("got %+v, want empty none", g)
		}
	})

	t.Run("notes win", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "notes.txt", "text content")
		g, err := Load(ctx, dir, Options{Notes: "slide notes", PDFText: pdfs})
		if err != nil {
			t.Fatal(err)
		}
		if g.Source != SourcePPTX || g.Text != "slide notes" {
			t.Errorf("got %+v", g)
		}
	})

	t.Run("first txt before pdf", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.txt", "second text")
		writeFile(t, dir, "a.txt", "first text")
		writeFile(t, dir, "a.pdf", "%PDF")
		g, err := Load(ctx, dir, Options{PDFText: pdfs})
		if err != nil {
			t.Fatal(err)
		}
		if g.Source != SourceText || g.Text != "first text" {
			t.Errorf("got %+v", g)
		}
	})

	t.Run("pdfs concatenated in order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.pdf", "%PDF")
		writeFile(t, dir, "a.pdf", "%PDF")
		writeFile(t, dir, "broken.pdf", "%PDF")
		g, err := Load(ctx, dir, Options{PDFText: pdfs})
		if err != nil {
			t.Fatal(err)
		}
		if g.Source != SourcePDF || g.Text != "pdf one\npdf two" {
			t.Errorf("got %+v", g)
		}
	})

	t.Run("empty folder", func(t *testing.T) {
		g, err := Load(ctx, t.TempDir(), Options{PDFText: pdfs})
		if err != nil {
			t.Fatal(err)
		}
		if g.Source != SourceNone {
			t.Errorf("got %+v", g)
		}
	})
}

func TestLoadTruncates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "long.txt", strings.Repeat("x", MaxGroundingChars+500))

	g, err := Load(context.Background(), dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(g.Text); n != MaxGroundingChars {
		t.Errorf("grounding length = %d, want %d", n, MaxGroundingChars)
	}

	g, err = Load(context.Background(), dir, Options{Notes: strings.Repeat("n", 10), MaxChars: 4})
	if err != nil {
		t.Fatal(err)
	}
	if g.Text != "nnnn" {
		t.Errorf("notes not truncated: %q", g.Text)
	}
}
