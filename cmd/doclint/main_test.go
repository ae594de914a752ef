package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/doclint/internal/storage"
)

// fixture lays out one source file, its graph dump and settings that point the
// engine at `true` so external rules run without a documentation tool.
func fixture(t *testing.T) (dir, settings, graph string) {
	t.Helper()
	dir = t.TempDir()
	src := filepath.Join(dir, "lib", "bank.rb")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("class Bank\n  def withdraw; end\nend\n"), 0o644))

	g := map[string]any{"objects": []map[string]any{
		{"path": "Bank", "type": "class", "file": src, "line": 1, "docstring": "A bank."},
		{"path": "Bank#withdraw", "type": "method", "file": src, "line": 2},
	}}
	b, err := json.Marshal(g)
	require.NoError(t, err)
	graph = filepath.Join(dir, "graph.json")
	require.NoError(t, os.WriteFile(graph, b, 0o644))

	settings = filepath.Join(dir, "doclint.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`
engine:
  command: "true"
  prepare: ""
database:
  dsn: `+filepath.Join(dir, "runs.db")+`
logging:
  level: error
reporting:
  formats: [json]
`), 0o644))
	return dir, settings, graph
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--settings", filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "doclint dev")
}

func TestLint_EndToEnd(t *testing.T) {
	dir, settings, graph := fixture(t)
	outDir := filepath.Join(dir, "reports")
	rulesCfg := filepath.Join(dir, "rules.yml")
	require.NoError(t, os.WriteFile(rulesCfg, []byte("AllValidators:\n  FailOnSeverity: warning\n"), 0o644))

	out, err := execute(t, "lint", filepath.Join(dir, "lib"),
		"--settings", settings, "--config", rulesCfg, "--graph", graph, "--out", outDir, "--save")
	var ec exitCode
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, exitCode(1), ec)
	assert.Contains(t, out, "Documentation required for `Bank#withdraw`")
	assert.Contains(t, out, "Documentation coverage: 50.00% (1/2)")

	matches, err := filepath.Glob(filepath.Join(outDir, "run-*.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	out, err = execute(t, "history", "--settings", settings)
	require.NoError(t, err)
	assert.Contains(t, out, "run-")
}

func TestLint_ConfigErrorExitsTwo(t *testing.T) {
	dir, settings, graph := fixture(t)
	rulesCfg := filepath.Join(dir, "rules.yml")
	require.NoError(t, os.WriteFile(rulesCfg, []byte("Tags/Nope:\n  Enabled: true\n"), 0o644))

	_, err := execute(t, "lint", dir, "--settings", settings, "--config", rulesCfg, "--graph", graph)
	var ec exitCode
	require.ErrorAs(t, err, &ec)
	assert.Equal(t, exitCode(2), ec)
}

func TestRulesCommand(t *testing.T) {
	dir, settings, _ := fixture(t)
	rulesCfg := filepath.Join(dir, "rules.yml")
	require.NoError(t, os.WriteFile(rulesCfg, []byte("Tags/Order:\n  Enabled: false\n"), 0o644))

	out, err := execute(t, "rules", "--settings", settings, "--config", rulesCfg)
	require.NoError(t, err)
	assert.Regexp(t, `Tags/Order\s+false\s+convention`, out)
	assert.Regexp(t, `Documentation/UndocumentedObjects\s+true\s+warning`, out)
}

func TestDiffCommand(t *testing.T) {
	dir, settings, graph := fixture(t)
	outDir := filepath.Join(dir, "reports")
	for i := 0; i < 2; i++ {
		_, err := execute(t, "lint", filepath.Join(dir, "lib"),
			"--settings", settings, "--config", filepath.Join(dir, "none.yml"),
			"--graph", graph, "--out", outDir, "--save")
		require.Error(t, err)
	}

	db, err := storage.Open("sqlite", filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	rows, err := db.ListRuns(10, 0)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, rows, 2)

	out, err := execute(t, "diff", rows[1].ID, rows[0].ID, "--settings", settings, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "new 0, removed 0, changed 0")
	assert.FileExists(t, filepath.Join(outDir, "diff_"+rows[1].ID+"__"+rows[0].ID+".json"))

	_, err = execute(t, "diff", "nope", rows[0].ID, "--settings", settings)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
