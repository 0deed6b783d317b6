package handler

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware())
		}
		r.Post("/square", h.SquareImage)
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", h.ListRuns)
		r.Get("/{id}", h.ViewRun)
	})
}
