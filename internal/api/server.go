// Package api serves stored lint runs over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codewithboateng/doclint/internal/report"
	"github.com/codewithboateng/doclint/internal/results"
	"github.com/codewithboateng/doclint/internal/rules"
	"github.com/codewithboateng/doclint/internal/shared"
	"github.com/codewithboateng/doclint/internal/storage"
)

// Store is the minimal contract the API needs.
type Store interface {
	ListRuns(limit, offset int) ([]storage.RunRow, error)
	LoadRun(id string) (*report.Run, error)
	LoadLatestRun() (*report.Run, error)
	ListOffenses(runID, minSeverity string) ([]results.Offense, error)
	LogAudit(principal, action, resource string, meta map[string]any) error
}

type Server struct {
	DB     Store
	Logger *zap.SugaredLogger
	// TokenHash is a bcrypt hash of the bearer token. Empty disables auth.
	TokenHash      string
	AllowedOrigins []string
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	withCORS := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if o := s.pickCORSOrigin(r); o != "" {
				w.Header().Set("Access-Control-Allow-Origin", o)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			h(w, r)
		}
	}

	mux.HandleFunc("GET /api/v1/health", withCORS(s.handleHealth))
	mux.HandleFunc("GET /api/v1/rules", withCORS(s.handleRules))

	mux.HandleFunc("GET /api/v1/runs", withCORS(withAuth(s, s.handleListRuns, "runs:list")))
	mux.HandleFunc("GET /api/v1/runs/latest", withCORS(withAuth(s, s.handleGetLatest, "runs:latest")))
	mux.HandleFunc("GET /api/v1/runs/{id}", withCORS(withAuth(s, s.handleGetRun, "runs:get")))
	mux.HandleFunc("GET /api/v1/runs/{id}/offenses", withCORS(withAuth(s, s.handleListOffenses, "runs:offenses")))

	mux.HandleFunc("/", withCORS(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	return mux
}

func (s *Server) pickCORSOrigin(r *http.Request) string {
	origin := r.Header.Get("Origin")
	for _, ao := range s.AllowedOrigins {
		if ao == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(origin, ao) {
			return origin
		}
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := clamp(parseInt(q.Get("limit"), 20), 1, 200)
	offset := max(parseInt(q.Get("offset"), 0), 0)

	rows, err := s.DB.ListRuns(limit, offset)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": rows, "limit": limit, "offset": offset,
	})
}

func (s *Server) handleGetLatest(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadLatestRun()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.DB.LoadRun(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListOffenses(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	minSev := rules.NormalizeSeverity(r.URL.Query().Get("min_severity"))
	if minSev != "" && !rules.ValidSeverity(minSev) {
		s.err(w, http.StatusBadRequest, "min_severity must be error, warning or convention")
		return
	}
	items, err := s.DB.ListOffenses(id, minSev)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": id, "min_severity": minSev, "items": items, "count": len(items),
	})
}

// fail maps store errors to a status, logging anything unexpected.
func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.err(w, http.StatusNotFound, "run not found")
		return
	}
	shared.OrNop(s.Logger).Errorw("api store error", "error", err)
	s.err(w, http.StatusInternalServerError, "db error")
}

func (s *Server) err(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
