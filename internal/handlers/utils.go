package handlers

import (
	"encoding/json"
	"net/http"

	"subtitle-burner/internal/apperr"
	"subtitle-burner/internal/logging"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONStatus writes v with the given status code.
func writeJSONStatus(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeError renders err as {"detail": ...}. Unclassified and IO errors are
// logged in full and reported with a generic message.
func writeError(w http.ResponseWriter, err error) {
	status, detail := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logging.Error("request failed: %v", err)
	}
	writeJSONStatus(w, status, map[string]string{"detail": detail})
}
