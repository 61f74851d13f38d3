package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the database ping performed by /api/health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Fleet query endpoints (no auth required)
		r.Get("/devices", s.handleListDevices)
		r.Get("/device-details", s.handleDeviceDetails)
		r.Get("/motions", s.handleMotionHistory)

		// Provisioning reads (no auth required)
		r.Get("/locations", s.handleListLocations)
		r.Get("/locations/{id}", s.handleGetLocation)
		r.Get("/locations/{id}/mailboxes", s.handleListLocationMailboxes)
		r.Get("/mailboxes", s.handleListMailboxes)
		r.Get("/mailboxes/{id}", s.handleGetMailbox)

		// Write endpoints, gated by the shared secret when configured
		r.Group(func(r chi.Router) {
			r.Use(s.apiKeyMiddleware)

			r.Post("/register", s.handleRegister)
			r.Post("/motion", s.handleMotion)
			r.Post("/system-info", s.handleSystemInfo)

			r.Post("/locations", s.handleCreateLocation)
			r.Put("/locations/{id}", s.handleUpdateLocation)
			r.Delete("/locations/{id}", s.handleDeleteLocation)
			r.Post("/mailboxes", s.handleCreateMailbox)
			r.Delete("/mailboxes/{id}", s.handleDeleteMailbox)
		})
	})

	return r
}

// handleHealth returns the server health status, including a database
// reachability check when a database handle was provided.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := envelope{
		"status":  "ok",
		"version": s.version,
	}

	status := http.StatusOK
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.db.HealthCheck(ctx); err != nil {
			s.logger.Error("database health check failed", "error", err)
			body["status"] = "degraded"
			body["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			body["database"] = "ok"
		}
	}

	body["success"] = status == http.StatusOK
	writeJSON(w, status, body)
}
