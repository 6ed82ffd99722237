package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parchlabs/clauseguard/internal/api"
	"github.com/parchlabs/clauseguard/internal/api/handlers"
	"github.com/parchlabs/clauseguard/internal/api/middleware"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	InternalSecret  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/documents", func(r chi.Router) {
		r.Post("/upload-url", cfg.DocumentHandler.InitUpload)
		r.Post("/", cfg.DocumentHandler.Create)
		r.Get("/", cfg.DocumentHandler.List)
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Get("/{id}/download", cfg.DocumentHandler.GetDownloadURL)
		r.Post("/{id}/analyze", cfg.DocumentHandler.RequestAnalysis)

		// Synchronous runs bypass the queue and are for trusted callers only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.InternalAuth(cfg.InternalSecret))
			r.Post("/{id}/analyze/run", cfg.DocumentHandler.RunAnalysis)
		})
	})

	return r
}
