// Package server exposes the presentation store, agent, and export
// pipeline over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"slideclaw/internal/agent"
	"slideclaw/internal/deck"
	"slideclaw/internal/export"
	"slideclaw/internal/store"
)

// Deps collects the services the HTTP surface is built on.
type Deps struct {
	Deck   *deck.Service
	Store  *store.Store
	Agent  *agent.Runner
	Export *export.Service
}

// NewRouter builds the full API router.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(allowCORS)

	h := &handler{deps: deps}

	r.Route("/api", func(r chi.Router) {
		r.Get("/presentations", h.listPresentations)
		r.Post("/presentations", h.createPresentation)
		r.Get("/presentations/{id}", h.getPresentation)
		r.Delete("/presentations/{id}", h.deletePresentation)

		r.Post("/presentations/{id}/slides", h.addSlide)
		// reorder must be declared before the {slideId} routes so chi does
		// not treat "reorder" as a slide id.
		r.Put("/presentations/{id}/slides/reorder", h.reorderSlides)
		r.Put("/presentations/{id}/slides/{slideId}", h.updateSlide)
		r.Delete("/presentations/{id}/slides/{slideId}", h.deleteSlide)

		r.Get("/presentations/{id}/export/pdf", h.exportPDF)
		r.Get("/presentations/{id}/export/pptx", h.exportPPTX)

		r.Post("/agent/generate", h.generate)

		r.Get("/design-config", h.getDesignConfig)
		r.Put("/design-config", h.putDesignConfig)
	})

	r.Get("/health", h.health)

	return r
}

type handler struct {
	deps Deps
}

// allowCORS is deliberately permissive: the web client runs on a
// different dev port than the API.
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
