package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const RequestIDKey contextKey = "request_id"

// requestIDHeader is honored on the way in and always set on the way out, so
// callers can correlate a response with their own trace IDs.
const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an ID, minting one when the caller did
// not supply a header. The ID travels in the request context and is echoed in
// the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID placed in ctx by RequestID. It returns
// an empty string outside a request scope.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
