package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/codewithboateng/doclint/internal/report"
	"github.com/codewithboateng/doclint/internal/results"
)

func WriteJSON(outDir string, run *report.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, run.ID+".json")
	b, err := EncodeJSON(run)
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, b, 0o644)
}

// EncodeJSON renders the run as indented JSON with a trailing newline.
func EncodeJSON(run *report.Run) ([]byte, error) {
	if run.Offenses == nil {
		cp := *run
		cp.Offenses = []results.Offense{}
		run = &cp
	}
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
