package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"subtitle-burner/internal/apperr"
)

// Routes returns the API router.
func (h *Handlers) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Root).Methods("GET", "HEAD").Name("root")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET", "HEAD").Name("health")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD").Name("livez")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET", "HEAD").Name("readyz")
	r.HandleFunc("/version", h.GetVersion).Methods("GET").Name("version")

	r.HandleFunc("/burn-subtitles", h.BurnSubtitles).Methods("POST").Name("burn-link")
	r.HandleFunc("/burn-subtitles-inline", h.BurnSubtitlesInline).Methods("POST").Name("burn-inline")
	r.HandleFunc("/burn-subtitles-url", h.BurnSubtitlesURL).Methods("POST").Name("burn-url")
	r.HandleFunc("/download/{job_id}", h.Download).Methods("GET", "HEAD").Name("download")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, apperr.NotFound("Not Found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONStatus(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method Not Allowed"})
	})

	return r
}
