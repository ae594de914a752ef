package reporting

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/doclint/internal/coverage"
	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
	"github.com/codewithboateng/doclint/internal/report"
	"github.com/codewithboateng/doclint/internal/results"
	"github.com/codewithboateng/doclint/internal/rules"
)

var update = flag.Bool("update", false, "update golden snapshot")

const goldenFile = "testdata/expected.json"

func goldenRun(t *testing.T) *report.Run {
	t.Helper()
	ents := []docmodel.Entity{
		{Path: "Bank", Kind: docmodel.KindClass, File: "lib/bank.rb", Line: 1, Docstring: "A bank."},
		{Path: "Bank#withdraw", Kind: docmodel.KindMethod, File: "lib/bank.rb", Line: 12},
	}
	rule, ok := rules.Get("Documentation/UndocumentedObjects")
	require.True(t, ok)

	var c protocol.Collector
	for _, e := range ents {
		require.NoError(t, rule.Check(e, defaults(rule.Defaults), &c))
	}
	offenses, err := results.Builder{}.Build(rule.Parse(c.String()), rule)
	require.NoError(t, err)

	rep := report.Aggregator{
		Policy:   &report.Policy{FailOnSeverity: "warning"},
		Coverage: coverage.Calculator{Objects: docmodel.NewRegistry(ents)},
		Files:    []string{"lib/bank.rb"},
	}.Aggregate([]report.RuleResult{{RuleID: rule.ID, Offenses: offenses}})

	return &report.Run{
		ID:             "run-golden",
		StartedAt:      time.Time{},
		Source:         "testdata",
		FailOnSeverity: "warning",
		Snapshot:       rep.Snapshot(),
	}
}

type defaults map[string]any

func (d defaults) Get(k string) any { return d[k] }
func (d defaults) Strings(k string) []string {
	v, _ := d[k].([]string)
	return v
}

func TestGolden_JSONSnapshot(t *testing.T) {
	got, err := EncodeJSON(goldenRun(t))
	require.NoError(t, err)

	if *update {
		require.NoError(t, os.WriteFile(goldenFile, got, 0o644))
		t.Logf("updated %s", goldenFile)
		return
	}
	want, err := os.ReadFile(goldenFile)
	require.NoError(t, err, "run with -update to create it")
	if !bytes.Equal(bytes.TrimSpace(want), bytes.TrimSpace(got)) {
		t.Fatalf("golden mismatch\n--- want\n%s\n--- got\n%s", want, got)
	}
}

func TestWriters(t *testing.T) {
	run := goldenRun(t)
	dir := t.TempDir()

	p, err := WriteJSON(dir, run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-golden.json"), p)

	p, err = WriteText(dir, run)
	require.NoError(t, err)
	txt, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(txt), "lib/bank.rb:12: [W] DocumentationUndocumentedObjects: Documentation required for `Bank#withdraw`")
	assert.Contains(t, string(txt), "Documentation coverage: 50.00% (1/2)")
	assert.Contains(t, string(txt), "Result: failed")

	p, err = WriteHTML(dir, run)
	require.NoError(t, err)
	page, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<td class='mono'>lib/bank.rb:12</td>")

	p, err = WriteSARIF(dir, run)
	require.NoError(t, err)
	var sarif map[string]any
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &sarif))
	assert.Equal(t, "2.1.0", sarif["version"])
	assert.True(t, strings.Contains(string(b), `"startLine": 12`))
}

func TestEncodeJSON_EmptyOffensesIsArray(t *testing.T) {
	b, err := EncodeJSON(&report.Run{ID: "r"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"offenses": []`)
}

func TestDiff(t *testing.T) {
	mk := func(rule, file string, line int, obj, msg, sev string) results.Offense {
		return results.Offense{RuleID: rule, Location: file, LocationLine: line, Message: msg, Severity: sev,
			Extra: map[string]any{"object_name": obj}}
	}
	base := &report.Run{ID: "base", Snapshot: report.Snapshot{Offenses: []results.Offense{
		mk("Tags/Order", "a.rb", 3, "A#x", "order", "convention"),
		mk("Documentation/UndocumentedObjects", "a.rb", 9, "A#gone", "doc", "warning"),
		mk("Tags/TypeSyntax", "b.rb", 1, "B#y", "type", "warning"),
	}}}
	head := &report.Run{ID: "head", Snapshot: report.Snapshot{Offenses: []results.Offense{
		mk("Tags/Order", "a.rb", 5, "A#x", "order", "convention"),
		mk("Tags/TypeSyntax", "b.rb", 1, "B#y", "type", "error"),
		mk("Documentation/UndocumentedObjects", "c.rb", 2, "C#new", "doc", "warning"),
	}}}

	d := Diff(base, head)
	assert.Equal(t, DiffSummary{NewCount: 1, RemovedCount: 1, ChangedCount: 2}, d.Summary)
	assert.Equal(t, "C#new", d.New[0].Object)
	assert.Equal(t, "A#gone", d.Removed[0].Object)
	assert.Equal(t, []string{"location_line"}, d.Changed[0].Changed)
	assert.Equal(t, []string{"severity"}, d.Changed[1].Changed)

	p, err := WriteDiffJSON(t.TempDir(), base, head)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, "diff_base__head.json"))
}
