package handlers

import (
	"net/http"
	"time"

	"subtitle-burner/internal/startup"
)

const readinessCacheTTL = 30 * time.Second

// RootResponse describes the service and its endpoints.
type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// Root returns a JSON descriptor of the available endpoints.
func (h *Handlers) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, RootResponse{
		Message: "Subtitle Burner API",
		Version: startup.Version,
		Endpoints: map[string]string{
			"POST /burn-subtitles":        "Upload or link a video and SRT file; returns a download link",
			"POST /burn-subtitles-inline": "Upload or link a video and SRT file; returns the video",
			"POST /burn-subtitles-url":    "Fetch a video and SRT file from URLs; returns the video",
			"GET /download/{job_id}":      "Download a video produced by /burn-subtitles",
			"GET /health":                 "Health check endpoint",
		},
	})
}

// HealthCheck reports that the process is serving requests.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSONStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only when ffmpeg can be run. The probe result
// is cached briefly so frequent probes do not spawn a process each time.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.checkReady(r); err != nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": err.Error(),
		})
		return
	}
	writeJSONStatus(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handlers) checkReady(r *http.Request) error {
	h.readyMu.Lock()
	defer h.readyMu.Unlock()

	if !h.readyChecked.IsZero() && time.Since(h.readyChecked) < readinessCacheTTL {
		return h.readyErr
	}
	_, h.readyErr = h.invoker.CheckAvailable(r.Context())
	h.readyChecked = time.Now()
	return h.readyErr
}
