package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/parchlabs/clauseguard/internal/api"
)

type contextKey string

// InternalSecretHeader carries the shared secret for trusted internal calls.
const InternalSecretHeader = "X-Internal-Secret"

// InternalAuth guards endpoints reserved for trusted internal callers. With
// no secret configured the guard is disabled.
func InternalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(InternalSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				api.Error(w, http.StatusUnauthorized, "invalid internal secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
