package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codewithboateng/doclint/internal/report"
	"github.com/codewithboateng/doclint/internal/results"
)

type DiffPayload struct {
	BaseID  string        `json:"base_id"`
	HeadID  string        `json:"head_id"`
	Summary DiffSummary   `json:"summary"`
	New     []DiffOffense `json:"new"`
	Removed []DiffOffense `json:"removed"`
	Changed []DiffChanged `json:"changed"`
}

type DiffSummary struct {
	NewCount     int `json:"new"`
	RemovedCount int `json:"removed"`
	ChangedCount int `json:"changed"`
}

type DiffOffense struct {
	RuleID       string `json:"rule"`
	Location     string `json:"location"`
	LocationLine int    `json:"location_line"`
	Object       string `json:"object,omitempty"`
	Severity     string `json:"severity,omitempty"`
	Message      string `json:"message,omitempty"`
}

type DiffChanged struct {
	Key     string      `json:"key"`
	Base    DiffOffense `json:"base"`
	Head    DiffOffense `json:"head"`
	Changed []string    `json:"fields_changed"`
}

// Diff compares two runs. Offenses match on rule, file, object and message,
// so a line shift alone shows up as a change rather than new plus removed.
func Diff(base, head *report.Run) DiffPayload {
	bm := map[string]results.Offense{}
	hm := map[string]results.Offense{}
	for _, o := range base.Offenses {
		bm[keyOf(o)] = o
	}
	for _, o := range head.Offenses {
		hm[keyOf(o)] = o
	}

	added := []DiffOffense{}
	removed := []DiffOffense{}
	changed := []DiffChanged{}
	for k, ho := range hm {
		bo, ok := bm[k]
		if !ok {
			added = append(added, asDiff(ho))
			continue
		}
		var fields []string
		if norm(bo.Severity) != norm(ho.Severity) {
			fields = append(fields, "severity")
		}
		if bo.LocationLine != ho.LocationLine {
			fields = append(fields, "location_line")
		}
		if len(fields) > 0 {
			changed = append(changed, DiffChanged{Key: k, Base: asDiff(bo), Head: asDiff(ho), Changed: fields})
		}
	}
	for k, bo := range bm {
		if _, ok := hm[k]; !ok {
			removed = append(removed, asDiff(bo))
		}
	}

	sortDiff(added)
	sortDiff(removed)
	sort.Slice(changed, func(i, j int) bool { return changed[i].Key < changed[j].Key })

	return DiffPayload{
		BaseID: base.ID, HeadID: head.ID,
		Summary: DiffSummary{
			NewCount:     len(added),
			RemovedCount: len(removed),
			ChangedCount: len(changed),
		},
		New:     added,
		Removed: removed,
		Changed: changed,
	}
}

func WriteDiffJSON(outDir string, base, head *report.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "diff_"+base.ID+"__"+head.ID+".json")
	b, err := json.MarshalIndent(Diff(base, head), "", "  ")
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

func sortDiff(d []DiffOffense) {
	sort.Slice(d, func(i, j int) bool {
		if d[i].RuleID != d[j].RuleID {
			return d[i].RuleID < d[j].RuleID
		}
		if d[i].Location != d[j].Location {
			return d[i].Location < d[j].Location
		}
		return d[i].LocationLine < d[j].LocationLine
	})
}

func keyOf(o results.Offense) string {
	sb := strings.Builder{}
	sb.WriteString(o.RuleID)
	sb.WriteByte('|')
	sb.WriteString(filepath.ToSlash(o.Location))
	sb.WriteByte('|')
	sb.WriteString(objectOf(o))
	sb.WriteByte('|')
	sb.WriteString(strings.TrimSpace(o.Message))
	return sb.String()
}

func objectOf(o results.Offense) string {
	if v, ok := o.Field("object_name"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func asDiff(o results.Offense) DiffOffense {
	return DiffOffense{
		RuleID:       o.RuleID,
		Location:     o.Location,
		LocationLine: o.LocationLine,
		Object:       objectOf(o),
		Severity:     o.Severity,
		Message:      o.Message,
	}
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
