package middleware

import (
	"net/http"

	"github.com/parchlabs/clauseguard/internal/api"
)

// MaxBodyBytes caps the request body at limit bytes. Uploads go straight to
// object storage via presigned URLs, so API payloads are always small; a
// declared Content-Length over the cap is rejected up front and chunked
// bodies are truncated by MaxBytesReader.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength != -1 && r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
