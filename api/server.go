/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for scheduling frontends

ROUTE GROUPS:
  /api/summaries         Batch month computation
  /api/compliance/*      Standalone violation checks
  /api/patterns/*        Rotation generation and merge
  /api/holidays/*        Tenant holiday table + seed view

SECURITY NOTE:
  No authentication middleware. The engine receives already-scoped data;
  access control belongs to the upstream gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/summaries", h.ComputeSummaries)

		r.Route("/compliance", func(r chi.Router) {
			r.Post("/check", h.CheckCompliance)
		})

		r.Route("/patterns", func(r chi.Router) {
			r.Post("/generate", h.GeneratePattern)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.ListHolidays)
			r.Post("/", h.UpsertHoliday)
			r.Get("/seed/{year}", h.SeedYear)
			r.Delete("/{date}", h.DeleteHoliday)
		})
	})

	return r
}
