/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/policies/*       Leave policy catalog
  /api/employees/*      Per-employee balances and applications
  /api/applications/*   Time-away submission and workflow actions
  /api/absences/*       Leave-of-absence submission and workflow actions
  /api/encashments/*    Encashment claims and workflow actions
  /api/manager/*        Manager review queue
  /api/import/*         Upstream payload normalization

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Policy routes
		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
		})

		// Employee routes
		r.Route("/employees/{id}", func(r chi.Router) {
			r.Get("/balances", h.GetBalances)
			r.Get("/applications", h.ListLeaveApplications)
			r.Get("/absences", h.ListAbsenceApplications)
			r.Get("/encashments", h.ListEncashments)
		})

		// Time-away application routes
		r.Route("/applications", func(r chi.Router) {
			r.Post("/", h.SubmitLeaveApplication)
			r.Get("/{id}", h.GetLeaveApplication)
			r.Post("/{id}/{action}", h.TransitionLeaveApplication)
		})

		// Leave-of-absence routes
		r.Route("/absences", func(r chi.Router) {
			r.Post("/", h.SubmitAbsenceApplication)
			r.Post("/{id}/{action}", h.TransitionAbsenceApplication)
		})

		// Encashment routes
		r.Route("/encashments", func(r chi.Router) {
			r.Post("/", h.SubmitEncashment)
			r.Post("/{id}/{action}", h.TransitionEncashment)
		})

		// Manager routes
		r.Get("/manager/queue", h.ManagerQueue)

		// Import routes
		r.Post("/import/{collection}", h.Import)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
