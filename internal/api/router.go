package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikbrunner/bmsort/internal/organizer"
)

// NewRouter builds the full HTTP handler. Health checks are open; every
// /api route goes through AuthMiddleware. events, if non-nil, is mounted at
// GET /api/events.
func NewRouter(org *organizer.Organizer, token string, events http.Handler, logger *slog.Logger) chi.Router {
	h := NewHandler(org, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(token))

		r.Get("/status", h.Status)
		r.Post("/organize", h.Organize)
		r.Post("/organize/stop", h.Stop)

		r.Post("/bookmarks", h.AddBookmark)
		r.Get("/bookmarks/check", h.CheckBookmark)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	return r
}
