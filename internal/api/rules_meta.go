package api

import (
	"net/http"

	"github.com/codewithboateng/doclint/internal/rules"
)

// GET /api/v1/rules (registered rules; no auth needed for read-only)
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	type R struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		Summary         string `json:"summary"`
		Category        string `json:"category"`
		Strategy        string `json:"strategy"`
		DefaultSeverity string `json:"default_severity"`
		DefaultEnabled  bool   `json:"default_enabled"`
		Docs            string `json:"docs,omitempty"`
	}
	out := []R{}
	for _, rr := range rules.List() {
		out = append(out, R{
			ID: rr.ID, Name: rules.DisplayName(rr), Summary: rr.Summary, Category: rr.Category,
			Strategy: rr.Strategy.String(), DefaultSeverity: rr.DefaultSeverity,
			DefaultEnabled: rr.DefaultEnabled, Docs: rr.Docs,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}
