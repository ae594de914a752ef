package api

import (
	"net/http"

	"github.com/codewithboateng/doclint/internal/security"
	"github.com/codewithboateng/doclint/internal/shared"
)

const principalAPI = "api-token"

// withAuth checks the bearer token against the configured hash and audits the
// access. With no hash configured every request passes as "anonymous".
func withAuth(s *Server, next http.HandlerFunc, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := "anonymous"
		if s.TokenHash != "" {
			if !security.CheckToken(s.TokenHash, security.BearerToken(r.Header.Get("Authorization"))) {
				s.err(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			principal = principalAPI
		}
		if err := s.DB.LogAudit(principal, action, r.URL.Path, map[string]any{"method": r.Method}); err != nil {
			shared.OrNop(s.Logger).Warnw("audit write failed", "action", action, "error", err)
		}
		next(w, r)
	}
}
