package middleware

import "net/http"

// Cache-Control directives used by the dashboard API.
const (
	// CacheNoStore is for responses derived from mutable criteria or session state.
	CacheNoStore = "no-store"
	// CacheImmutable is for pure lookups such as stock classification.
	CacheImmutable = "public, max-age=86400, immutable"
)

// CacheControl sets the Cache-Control header on GET and HEAD responses.
func CacheControl(directive string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", directive)
			}
			next.ServeHTTP(w, r)
		})
	}
}
