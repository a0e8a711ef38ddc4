package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/benchline/benchline-core/internal/auth"
	"github.com/benchline/benchline-core/internal/env"
	"github.com/benchline/benchline-core/internal/infrastructure/mqtt"
)

// handleGetEnvironment returns the station's environment document.
func (s *Server) handleGetEnvironment(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.env.Tree())
}

// handleCheckEnvironment evaluates whether a requested environment is
// contained in the station's environment.
//
// The request body is the required environment as a JSON document. A
// contained request returns 204; a mismatch returns 409 with both the
// required and available trees so the caller can see what was missing.
func (s *Server) handleCheckEnvironment(w http.ResponseWriter, r *http.Request) {
	// Checks are reserved for operators and admins; viewers are read-only.
	if claims, ok := claimsFromContext(r.Context()); ok && claims.Role == auth.RoleViewer {
		writeForbidden(w, "environment checks require the operator role")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return
	}

	required, err := env.FromJSON(body)
	if err != nil {
		writeBadRequest(w, "invalid environment document: "+err.Error())
		return
	}

	start := time.Now()
	checkErr := s.env.Check(required)
	s.recordEnvCheck(checkErr == nil, time.Since(start))

	if checkErr == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var mismatch *env.MismatchError
	if errors.As(checkErr, &mismatch) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"status":    http.StatusConflict,
			"code":      ErrCodeConflict,
			"message":   "requested environment is not contained in the station environment",
			"required":  mismatch.Required,
			"available": mismatch.Available,
		})
		return
	}

	s.logger.Error("environment check failed", "error", checkErr)
	writeInternalError(w, "environment check failed")
}

// recordEnvCheck publishes the check verdict to telemetry and the event bus.
func (s *Server) recordEnvCheck(ok bool, duration time.Duration) {
	if s.telem != nil {
		s.telem.WriteEnvCheck(ok, duration)
	}
	if s.mqtt != nil {
		evt := mqtt.EnvCheckEvent{OK: ok}
		if err := s.mqtt.PublishEnvCheck(evt); err != nil {
			s.logger.Warn("failed to publish env check event", "error", err)
		}
	}
}
