package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/codewithboateng/doclint/internal/report"
)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}
type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}
type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}
type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}
type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}
type sarifArtifactLocation struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// ToolVersion is stamped into SARIF output; set by the CLI.
var ToolVersion = "dev"

func sarifLevel(sev string) string {
	switch sev {
	case "error":
		return "error"
	case "warning":
		return "warning"
	}
	return "note"
}

// EncodeSARIF renders offenses as a SARIF 2.1.0 log.
func EncodeSARIF(run *report.Run) ([]byte, error) {
	res := make([]sarifResult, 0, len(run.Offenses))
	for _, o := range run.Offenses {
		loc := sarifPhysicalLocation{ArtifactLocation: sarifArtifactLocation{URI: filepath.ToSlash(o.Location)}}
		if o.LocationLine > 0 {
			loc.Region = &sarifRegion{StartLine: o.LocationLine}
		}
		res = append(res, sarifResult{
			RuleID:    o.RuleID,
			Level:     sarifLevel(o.Severity),
			Message:   sarifMessage{Text: o.Message},
			Locations: []sarifLocation{{PhysicalLocation: loc}},
		})
	}
	return json.MarshalIndent(sarifLog{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: "doclint", Version: ToolVersion}},
			Results: res,
		}},
	}, "", "  ")
}

func WriteSARIF(outDir string, run *report.Run) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	b, err := EncodeSARIF(run)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, run.ID+".sarif")
	return path, os.WriteFile(path, b, 0o644)
}
