// Package middleware provides HTTP middleware for the subtitle burner API.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded path cardinality
//   - CORS headers and preflight handling
//   - Panic recovery that answers with the API's JSON error shape
//
// Chain applies them outermost first.
package middleware

import "net/http"

// Chain wraps h so that mws[0] runs first.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
