package content

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// ErrNotPPTX is returned for uploads that are not a readable presentation.
var ErrNotPPTX = errors.New("not a pptx presentation")

// MaxPartSize bounds the decompressed size of one part read from a PPTX.
const MaxPartSize = 16 << 20

type pptxShape struct {
	Placeholder *struct {
		Type string `xml:"type,attr"`
	} `xml:"nvSpPr>nvPr>ph"`
	Paragraphs []pptxParagraph `xml:"txBody>p"`
}

type pptxParagraph struct {
	Runs []string `xml:"r>t"`
}

type pptxPart struct {
	Shapes []pptxShape `xml:"cSld>spTree>sp"`
}

type pptxRels struct {
	Relationships []struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// NotesFromPPTX extracts speaker notes, one "<title>:\n<notes>\n" block per
// slide in slide order, blocks joined by a newline. Slides without a title
// placeholder are named "Slide N".
func NotesFromPPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPPTX, err)
	}

	slides := slideFiles(zr.File)
	if len(slides) == 0 {
		return "", fmt.Errorf("%w: no slides", ErrNotPPTX)
	}

	blocks := make([]string, 0, len(slides))
	for i, name := range slides {
		raw, err := readZipFile(zr.File, name)
		if err != nil {
			return "", err
		}
		title := slideTitle(raw)
		if title == "" {
			title = fmt.Sprintf("Slide %d", i+1)
		}

		var notes string
		if notesName := notesFileFor(zr.File, name); notesName != "" {
			nraw, err := readZipFile(zr.File, notesName)
			switch {
			case errors.Is(err, ErrNotPPTX):
				return "", err
			case err == nil:
				notes = notesText(nraw)
			}
		}
		blocks = append(blocks, title+":\n"+notes+"\n")
	}
	return strings.Join(blocks, "\n"), nil
}

// slideFiles lists ppt/slides/slideN.xml ordered by N.
func slideFiles(files []*zip.File) []string {
	var out []string
	for _, f := range files {
		if slideNumber(f.Name) > 0 {
			out = append(out, f.Name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return slideNumber(out[i]) < slideNumber(out[j])
	})
	return out
}

func slideNumber(name string) int {
	const prefix, suffix = "ppt/slides/slide", ".xml"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
	if err != nil {
		return 0
	}
	return n
}

// notesFileFor resolves the notes part of a slide through its relationships.
func notesFileFor(files []*zip.File, slide string) string {
	relsName := path.Join(path.Dir(slide), "_rels", path.Base(slide)+".rels")
	raw, err := readZipFile(files, relsName)
	if err != nil {
		return ""
	}
	var rels pptxRels
	if err := xml.Unmarshal(raw, &rels); err != nil {
		return ""
	}
	for _, r := range rels.Relationships {
		if strings.HasSuffix(r.Type, "/notesSlide") {
			return path.Clean(path.Join(path.Dir(slide), r.Target))
		}
	}
	return ""
}

func slideTitle(raw []byte) string {
	var part pptxPart
	if err := xml.Unmarshal(raw, &part); err != nil {
		return ""
	}
	for _, sh := range part.Shapes {
		if sh.Placeholder == nil {
			continue
		}
		if sh.Placeholder.Type == "title" || sh.Placeholder.Type == "ctrTitle" {
			return strings.TrimSpace(shapeText(sh))
		}
	}
	return ""
}

// notesText returns the body placeholder text of a notes slide.
func notesText(raw []byte) string {
	var part pptxPart
	if err := xml.Unmarshal(raw, &part); err != nil {
		return ""
	}
	for _, sh := range part.Shapes {
		if sh.Placeholder != nil && sh.Placeholder.Type == "body" {
			return strings.TrimSpace(shapeText(sh))
		}
	}
	return ""
}

func shapeText(sh pptxShape) string {
	lines := make([]string, len(sh.Paragraphs))
	for i, p := range sh.Paragraphs {
		lines[i] = strings.Join(p.Runs, "")
	}
	return strings.Join(lines, "\n")
}

func readZipFile(files []*zip.File, target string) ([]byte, error) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if strings.EqualFold(f.Name, target) {
			if f.UncompressedSize64 > MaxPartSize {
				return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrNotPPTX, f.Name, MaxPartSize)
			}
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			// The header size can lie; never read past the limit.
			data, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
			if err != nil {
				return nil, err
			}
			if len(data) > MaxPartSize {
				return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrNotPPTX, f.Name, MaxPartSize)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("file not found: %s", target)
}
