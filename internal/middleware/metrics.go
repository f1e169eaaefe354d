package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"subtitle-burner/internal/metrics"
)

// MetricsConfig holds configuration for the metrics middleware
type MetricsConfig struct {
	// SkipPaths are path prefixes that should not be recorded
	SkipPaths []string
}

// DefaultMetricsConfig skips the scrape endpoint and health probes.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		SkipPaths: []string{"/metrics", "/health", "/livez", "/readyz"},
	}
}

// knownPaths are recorded verbatim; everything else is collapsed.
var knownPaths = map[string]bool{
	"/":                      true,
	"/version":               true,
	"/burn-subtitles":        true,
	"/burn-subtitles-inline": true,
	"/burn-subtitles-url":    true,
}

// Metrics returns a middleware that records Prometheus metrics
func Metrics(config MetricsConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			wrapped := newResponseWriter(w)
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath maps a request path onto a small fixed label set.
func normalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	if rest, ok := strings.CutPrefix(path, "/download/"); ok && rest != "" && !strings.Contains(rest, "/") {
		return "/download/{job_id}"
	}
	return "other"
}
