package server

import (
	"net/http"

	"github.com/campuskit/virtualta/internal/api"
	"github.com/campuskit/virtualta/internal/api/handlers"
	"github.com/campuskit/virtualta/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AdminToken       string
	AnswerHandler    *handlers.AnswerHandler
	StatusHandler    *handlers.StatusHandler
	IngestHandler    *handlers.IngestHandler
	DocumentsHandler *handlers.DocumentsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Base64-encoded question images can get large.
	const maxBodyBytes int64 = 10 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/", cfg.StatusHandler.Root)
		r.Post("/", cfg.AnswerHandler.Answer)
		r.Get("/status", cfg.StatusHandler.Status)

		r.Post("/status-checks", cfg.StatusHandler.CreateStatusCheck)
		r.Get("/status-checks", cfg.StatusHandler.ListStatusChecks)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminTokenAuth(cfg.AdminToken))

			r.Post("/scrape-data", cfg.IngestHandler.ScrapeData)
			r.Get("/documents", cfg.DocumentsHandler.List)
		})
	})

	return r
}
