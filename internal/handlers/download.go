package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/filesystem"
	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/registry"
	"subtitle-burner/internal/streaming"
)

// Download serves a video produced by BurnSubtitles. An entry whose file
// has disappeared is pruned so later lookups behave as unknown.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job_id"]

	entry, err := h.store.Get(jobID)
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, apperr.NotFound("Job not found"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := filesystem.OpenWithRetry(entry.FilePath, filesystem.DefaultRetryConfig())
	if errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Output for job %s vanished from %s, removing entry", jobID, entry.FilePath)
		h.store.Remove(jobID)
		writeError(w, apperr.NotFound("File not found"))
		return
	}
	if err != nil {
		writeError(w, apperr.IO("open stored output", err))
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", entry.FilePath, err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		writeError(w, apperr.IO("stat stored output", err))
		return
	}

	w.Header().Set("Content-Type", streaming.ContentTypeMP4)
	w.Header().Set("Content-Disposition", streaming.ContentDisposition(entry.DisplayName))
	http.ServeContent(w, r, "", info.ModTime(), f)
}
