package handler

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pavelanni/tutor/internal/content"
	"github.com/pavelanni/tutor/internal/model"
)

func (h *Handler) handleUploadPPTX(w http.ResponseWriter, r *http.Request) {
	cs, sess := h.session(r)

	file, header, err := r.FormFile("pptx")
	if err != nil {
		h.finish(w, r, cs, model.NoticeBadInput)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pptx") {
		h.finish(w, r, cs, model.NoticeBadInput)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read upload", "error", err)
		h.finish(w, r, cs, model.NoticeBadInput)
		return
	}

	notes, err := content.NotesFromPPTX(data)
	if err != nil {
		slog.Warn("rejected pptx upload", "filename", header.Filename, "error", err)
		h.finish(w, r, cs, model.NoticeBadInput)
		return
	}

	sess.Lock()
	sess.Notes = notes
	sess.NotesName = filepath.Base(header.Filename)
	sess.Unlock()

	slog.Info("uploaded slide notes", "session", sess.ID, "filename", header.Filename, "chars", len(notes))
	h.finish(w, r, cs, model.NoticeNone)
}
