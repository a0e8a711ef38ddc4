package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Token issue (authenticated by the station secret in the request)
		r.Post("/auth/token", s.handleIssueToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Capability catalog
			r.Get("/models", s.handleListModels)
			r.Get("/sources", s.handleListSources)

			// Composed devices
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Get("/prompts", s.handleListPrompts)
				r.Get("/{name}", s.handleGetDevice)
			})

			// Station environment
			r.Route("/environment", func(r chi.Router) {
				r.Get("/", s.handleGetEnvironment)
				r.Post("/check", s.handleCheckEnvironment)
			})

			// WebSocket (auth via token query parameter, validated in handler)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"station": s.station.ID,
		"version": s.version,
	})
}
