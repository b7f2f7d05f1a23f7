package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every API route. events serves the SSE stream and may be
// nil when no hub is running. An empty corsOrigin allows any origin.
func NewRouter(h *GraphHandler, events http.Handler, corsOrigin string) chi.Router {
	if corsOrigin == "" {
		corsOrigin = "*"
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(corsOrigin))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	if events != nil {
		r.Handle("/events", events)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/kinds", h.ListKinds)
		r.Get("/rules", h.GetRules)
		r.Post("/validate", h.ValidateConnection)

		r.Get("/graph", h.GetGraph)
		r.Delete("/graph", h.ClearGraph)

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", h.CreateNode)
			r.Post("/changes", h.ApplyNodeChanges)
			r.Patch("/{id}", h.UpdateNode)
			r.Delete("/{id}", h.DeleteNode)
			r.Post("/{id}/select", h.SelectNode)
			r.Post("/{id}/toggle-life", h.ToggleNodeLife)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", h.CreateEdge)
			r.Post("/changes", h.ApplyEdgeChanges)
			r.Delete("/{id}", h.DeleteEdge)
		})

		r.Post("/history/undo", h.Undo)
		r.Post("/history/redo", h.Redo)
		r.Post("/mode/toggle", h.ToggleMode)

		r.Get("/expansion", h.GetExpansion)
		r.Post("/analysis", h.RunAnalysis)
		r.Get("/analysis", h.GetAnalysis)
		r.Get("/analysis/history", h.ListAnalyses)

		r.Post("/import/{format}", h.Import)
		r.Get("/export/{format}", h.Export)
	})

	return r
}
