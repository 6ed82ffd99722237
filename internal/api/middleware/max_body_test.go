package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func passthroughHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestMaxBodyBytes_RejectsOversizedBody(t *testing.T) {
	var called bool
	handler := MaxBodyBytes(10)(passthroughHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(strings.Repeat("x", 64)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "request body too large")
	assert.False(t, called, "oversized request never reaches the handler")
}

func TestMaxBodyBytes_AllowsSmallBody(t *testing.T) {
	var called bool
	handler := MaxBodyBytes(1024)(passthroughHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"title":"NDA"}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestMaxBodyBytes_ZeroLimitDisablesCap(t *testing.T) {
	var called bool
	handler := MaxBodyBytes(0)(passthroughHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(strings.Repeat("x", 1<<20)))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
