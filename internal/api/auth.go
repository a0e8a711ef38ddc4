package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/benchline/benchline-core/internal/auth"
)

// tokenRequest is the request body for POST /auth/token.
type tokenRequest struct {
	Secret  string    `json:"secret"`
	Subject string    `json:"subject"`
	Role    auth.Role `json:"role"`
}

// tokenResponse is the response body for POST /auth/token.
type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// secondsPerMinute converts the configured TTL to the expires_in field.
const secondsPerMinute = 60

// handleIssueToken mints a JWT for a client that presents the station secret.
//
// This is the bootstrap path for CI runners and dashboards: they hold the
// station secret from their own configuration and exchange it for a
// short-lived bearer token.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Subject == "" {
		writeBadRequest(w, "subject is required")
		return
	}
	if !auth.IsValidRole(req.Role) {
		writeBadRequest(w, "role must be one of: viewer, operator, admin")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.secCfg.JWT.Secret)) != 1 {
		writeUnauthorized(w, "invalid station secret")
		return
	}

	ttl := s.secCfg.JWT.AccessTokenTTL
	token, err := auth.GenerateAccessToken(req.Subject, req.Role, s.secCfg.JWT.Secret, ttl)
	if err != nil {
		s.logger.Error("failed to issue token", "subject", req.Subject, "error", err)
		writeInternalError(w, "failed to issue token")
		return
	}

	if ttl <= 0 {
		ttl = 15
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: ttl * secondsPerMinute,
	})
}
