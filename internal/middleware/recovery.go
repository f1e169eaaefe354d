package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"subtitle-burner/internal/logging"
	"subtitle-burner/internal/metrics"
)

// Recovery converts a handler panic into a 500 response with the standard
// {"detail": ...} body, unless the handler already started its response.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := newResponseWriter(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				metrics.HTTPPanicsRecovered.Inc()
				logging.Error("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())

				if wrapped.wroteHeader {
					return
				}
				wrapped.Header().Set("Content-Type", "application/json")
				wrapped.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(wrapped).Encode(map[string]string{
					"detail": "Unexpected error while processing request",
				})
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
