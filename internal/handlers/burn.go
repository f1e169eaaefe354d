package handlers

import (
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/filesystem"
	"subtitle-burner/internal/middleware"
	"subtitle-burner/internal/registry"
	"subtitle-burner/internal/streaming"
)

// BurnResponse is returned by the link endpoint.
type BurnResponse struct {
	Success     bool   `json:"success"`
	JobID       string `json:"job_id"`
	DownloadURL string `json:"download_url"`
	Filename    string `json:"filename"`
	Message     string `json:"message"`
}

// BurnSubtitles burns the subtitles, moves the result into durable storage
// and answers with a download link.
func (h *Handlers) BurnSubtitles(w http.ResponseWriter, r *http.Request) {
	j := newJob(modeLink)
	w.Header().Set(middleware.JobIDHeader, j.id)
	defer func() { h.dirs.Release(j.dir) }()
	defer j.finishOnPanic()

	req, err := h.parseJobRequest(w, r, true)
	if err != nil {
		h.fail(w, j, err)
		return
	}
	defer req.close()

	if err := h.execute(r.Context(), j, req); err != nil {
		h.fail(w, j, err)
		return
	}

	dst := filepath.Join(h.dirs.DurableDir(), j.id+outputExt)
	if err := filesystem.Move(j.outputPath, dst); err != nil {
		h.fail(w, j, apperr.IO("relocate output", err))
		return
	}

	entry := registry.Entry{JobID: j.id, FilePath: dst, DisplayName: j.filename}
	if info, err := filesystem.StatWithRetry(dst, filesystem.DefaultRetryConfig()); err == nil {
		entry.Size = info.Size()
	}
	h.store.Put(entry)

	// The artifact lives in storage now; the working directory can go.
	h.dirs.Release(j.dir)
	j.dir = ""

	j.transition(stateResponding)
	j.finish(nil)

	writeJSONStatus(w, http.StatusOK, BurnResponse{
		Success:     true,
		JobID:       j.id,
		DownloadURL: h.downloadURL(r, j.id),
		Filename:    j.filename,
		Message:     "Subtitles burned successfully",
	})
}

// BurnSubtitlesInline burns the subtitles and returns the video as the
// response body. Inputs may be uploads or URLs.
func (h *Handlers) BurnSubtitlesInline(w http.ResponseWriter, r *http.Request) {
	h.serveInline(w, r, modeInline, true)
}

// BurnSubtitlesURL is the URL-only variant of BurnSubtitlesInline; both
// video_url and srt_url are required and uploads are ignored.
func (h *Handlers) BurnSubtitlesURL(w http.ResponseWriter, r *http.Request) {
	h.serveInline(w, r, modeURL, false)
}

func (h *Handlers) serveInline(w http.ResponseWriter, r *http.Request, mode string, allowUploads bool) {
	j := newJob(mode)
	w.Header().Set(middleware.JobIDHeader, j.id)
	defer func() { h.dirs.Release(j.dir) }()
	defer j.finishOnPanic()

	req, err := h.parseJobRequest(w, r, allowUploads)
	if err != nil {
		h.fail(w, j, err)
		return
	}
	defer req.close()

	if !allowUploads {
		if err := requireURLs(req); err != nil {
			h.fail(w, j, err)
			return
		}
	}

	if err := h.execute(r.Context(), j, req); err != nil {
		h.fail(w, j, err)
		return
	}

	j.transition(stateResponding)
	err = streaming.SendFile(r.Context(), w, j.outputPath, j.filename, h.config.Stream)
	if apperr.Is(err, apperr.KindIO) {
		h.fail(w, j, err)
		return
	}
	j.finish(nil)
	if err != nil {
		j.log.Warn("response interrupted: %v", err)
	}
}

// fail records the failure and writes the error response.
func (h *Handlers) fail(w http.ResponseWriter, j *job, err error) {
	j.finish(err)
	writeError(w, err)
}

// downloadURL builds the absolute link for jobID, preferring the configured
// public base URL over what the request says about itself.
func (h *Handlers) downloadURL(r *http.Request, jobID string) string {
	base := h.config.PublicBaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}
		host := r.Host
		if fwd := firstHeaderValue(r, "X-Forwarded-Host"); fwd != "" {
			host = fwd
		}
		base = scheme + "://" + host
	}
	return base + "/download/" + url.PathEscape(jobID)
}

func firstHeaderValue(r *http.Request, name string) string {
	first, _, _ := strings.Cut(r.Header.Get(name), ",")
	return strings.ToLower(strings.TrimSpace(first))
}
