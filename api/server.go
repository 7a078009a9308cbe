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
  /api/contracts/*        Contract, balance, timeline, reservation management
  /api/points/*           Balance row updates
  /api/reservations/*     Reservation CRUD and preview
  /api/booking-windows/*  Upcoming window alerts
  /api/availability       Portfolio availability snapshot
  /api/scenarios/*        What-if evaluation
  /api/trip-explorer      Affordability search
  /api/point-charts/*     Chart browsing and cost calculation
  /api/settings/*         App settings
  /api/resorts            Resort metadata
  /api/health             Health check

SECURITY NOTE:
  No authentication middleware. Single-tenant tool; all endpoints are public.

SEE ALSO:
  - handlers.go, reservations.go, analysis.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/resorts", h.ListResorts)

		// Contract routes
		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", h.ListContracts)
			r.Post("/", h.CreateContract)
			r.Get("/{id}", h.GetContract)
			r.Put("/{id}", h.UpdateContract)
			r.Delete("/{id}", h.DeleteContract)
			r.Get("/{id}/points", h.GetContractPoints)
			r.Post("/{id}/points", h.CreateBalance)
			r.Get("/{id}/timeline", h.GetContractTimeline)
			r.Get("/{id}/reservations", h.ListContractReservations)
			r.Post("/{id}/reservations", h.CreateReservation)
		})

		// Balance row routes
		r.Route("/points", func(r chi.Router) {
			r.Put("/{id}", h.UpdateBalance)
			r.Delete("/{id}", h.DeleteBalance)
		})

		// Reservation routes
		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.ListReservations)
			r.Post("/preview", h.PreviewReservation)
			r.Get("/{id}", h.GetReservation)
			r.Put("/{id}", h.UpdateReservation)
			r.Delete("/{id}", h.DeleteReservation)
		})

		r.Get("/booking-windows/upcoming", h.UpcomingBookingWindows)
		r.Get("/availability", h.GetAvailability)
		r.Post("/scenarios/evaluate", h.EvaluateScenario)
		r.Get("/trip-explorer", h.TripExplorer)

		// Point chart routes
		r.Route("/point-charts", func(r chi.Router) {
			r.Get("/", h.ListCharts)
			r.Post("/calculate", h.CalculateCost)
			r.Get("/{resort}/{year}", h.GetChart)
			r.Get("/{resort}/{year}/rooms", h.GetChartRooms)
			r.Get("/{resort}/{year}/seasons", h.GetChartSeasons)
		})

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.ListSettings)
			r.Get("/{key}", h.GetSetting)
			r.Put("/{key}", h.UpdateSetting)
		})
	})

	return r
}
