package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/codewithboateng/doclint/internal/report"
)

// RenderText prints one line per offense followed by a summary, in the
// usual "file:line: [S] Name: message" form.
func RenderText(w io.Writer, run *report.Run) error {
	for _, o := range run.Offenses {
		if _, err := fmt.Fprintf(w, "%s:%d: [%s] %s: %s\n",
			o.Location, o.LocationLine, severityLetter(o.Severity), o.Name, o.Message); err != nil {
			return err
		}
	}
	st := run.Statistics
	if _, err := fmt.Fprintf(w, "\n%d offenses: %d error, %d warning, %d convention\n",
		st.Total, st.Error, st.Warning, st.Convention); err != nil {
		return err
	}
	if run.Coverage != nil {
		if _, err := fmt.Fprintf(w, "Documentation coverage: %.2f%% (%d/%d)\n",
			run.Coverage.Coverage, run.Coverage.Documented, run.Coverage.Total); err != nil {
			return err
		}
	}
	for _, id := range run.Inconclusive {
		if _, err := fmt.Fprintf(w, "Inconclusive: %s (engine failed without output)\n", id); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Result: %s\n", verdict(run.ExitCode))
	return err
}

func WriteText(outDir string, run *report.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, run.ID+".txt")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return path, RenderText(f, run)
}

func severityLetter(sev string) string {
	switch sev {
	case "error":
		return "E"
	case "warning":
		return "W"
	case "convention":
		return "C"
	}
	return "?"
}

func verdict(exit int) string {
	if exit == 0 {
		return "passed"
	}
	return "failed"
}
