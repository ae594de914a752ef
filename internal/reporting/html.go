package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"

	"github.com/codewithboateng/doclint/internal/report"
)

func WriteHTML(outDir string, run *report.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, run.ID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(run.ID))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .error{color:#b00} .warning{color:#a60}</style>")
	fmt.Fprint(f, "</head><body>")

	st := run.Statistics
	fmt.Fprintf(f, "<h1>doclint report – <span class='mono'>%s</span></h1>", html.EscapeString(run.ID))
	fmt.Fprintf(f, "<p>Offenses: %d &nbsp; error: %d &nbsp; warning: %d &nbsp; convention: %d &nbsp; <b>%s</b></p>",
		st.Total, st.Error, st.Warning, st.Convention, verdict(run.ExitCode))
	if run.Coverage != nil {
		fmt.Fprintf(f, "<p>Documentation coverage: %.2f%% <span class='dim'>(%d of %d objects)</span></p>",
			run.Coverage.Coverage, run.Coverage.Documented, run.Coverage.Total)
	}
	if run.FailOnSeverity != "" {
		fmt.Fprintf(f, "<p class='dim'>Fail threshold: %s", html.EscapeString(run.FailOnSeverity))
		if n := len(run.Inconclusive); n > 0 {
			fmt.Fprintf(f, " &nbsp; Inconclusive rules: %d", n)
		}
		fmt.Fprint(f, "</p>")
	}

	// Per-rule counts, busiest first.
	counts := map[string]int{}
	for _, o := range run.Offenses {
		counts[o.RuleID]++
	}
	if len(counts) > 0 {
		type rc struct {
			id string
			n  int
		}
		var byRule []rc
		for id, n := range counts {
			byRule = append(byRule, rc{id, n})
		}
		sort.Slice(byRule, func(i, j int) bool {
			if byRule[i].n == byRule[j].n {
				return byRule[i].id < byRule[j].id
			}
			return byRule[i].n > byRule[j].n
		})
		fmt.Fprint(f, "<h2>By Rule</h2><table><tr><th>Rule</th><th>Offenses</th></tr>")
		for _, r := range byRule {
			fmt.Fprintf(f, "<tr><td class='mono'>%s</td><td>%d</td></tr>", html.EscapeString(r.id), r.n)
		}
		fmt.Fprint(f, "</table>")
	}

	if len(run.Offenses) > 0 {
		fmt.Fprint(f, "<h2>All Offenses</h2><table><tr><th>Severity</th><th>Rule</th><th>Location</th><th>Message</th></tr>")
		for _, o := range run.Offenses {
			fmt.Fprintf(f, "<tr><td class='%s'>%s</td><td>%s</td><td class='mono'>%s:%d</td><td>%s</td></tr>",
				html.EscapeString(o.Severity),
				html.EscapeString(o.Severity),
				html.EscapeString(o.Name),
				html.EscapeString(o.Location), o.LocationLine,
				html.EscapeString(o.Message),
			)
		}
		fmt.Fprint(f, "</table>")
	} else {
		fmt.Fprint(f, "<h2>All Offenses</h2><p class='dim'>No offenses.</p>")
	}

	fmt.Fprint(f, "</body></html>")
	return path, nil
}
