package middlewares

import "net/http"

// DefaultMaxBodyBytes is the request body limit used when none is configured (1 MiB).
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps the request body at maxBytes. Reading past the cap fails with
// *http.MaxBytesError, which handlers answer with 413.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
