package report

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/doclint/internal/coverage"
	"github.com/codewithboateng/doclint/internal/results"
)

func off(rule, sev, file string, line int) results.Offense {
	return results.Offense{RuleID: rule, Severity: sev, Location: file, LocationLine: line}
}

type fixedCoverage struct {
	pct   float64
	err   error
	calls int
}

func (f *fixedCoverage) Calculate([]string) (*coverage.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &coverage.Result{Total: 10, Documented: int(f.pct / 10), Coverage: f.pct}, nil
}

func policy(sev string) *Policy { return &Policy{FailOnSeverity: sev} }

func TestScenarioTwoRules(t *testing.T) {
	x := RuleResult{RuleID: "X/Rule", Offenses: []results.Offense{
		off("X/Rule", "error", "a.rb", 1), off("X/Rule", "warning", "a.rb", 2),
	}}
	y := RuleResult{RuleID: "Y/Rule"}

	r := Aggregator{Policy: policy("error")}.Aggregate([]RuleResult{x, y})
	assert.Equal(t, 1, r.ExitCode())
	assert.Equal(t, Statistics{Error: 1, Warning: 1, Total: 2}, r.Statistics())

	r = Aggregator{Policy: policy("convention")}.Aggregate([]RuleResult{{RuleID: "X/Rule"}, y})
	assert.Equal(t, 0, r.ExitCode())
}

func TestExitCodeTable(t *testing.T) {
	conv := []RuleResult{{RuleID: "A/A", Offenses: []results.Offense{off("A/A", "convention", "a.rb", 1)}}}
	warn := []RuleResult{{RuleID: "A/A", Offenses: []results.Offense{off("A/A", "warning", "a.rb", 1)}}}
	cases := []struct {
		name string
		pol  *Policy
		rs   []RuleResult
		want int
	}{
		{"no policy", nil, warn, 0},
		{"convention fails on convention", policy("convention"), conv, 1},
		{"warning ignores convention", policy("warning"), conv, 0},
		{"warning fails on warning", policy("warning"), warn, 1},
		{"error ignores warning", policy("error"), warn, 0},
		{"unknown threshold passes", policy("fatal"), warn, 0},
		{"empty threshold passes", policy(""), warn, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Aggregator{Policy: tc.pol}.Aggregate(tc.rs).ExitCode())
		})
	}
}

func TestExitCodeMonotonic(t *testing.T) {
	sets := [][]results.Offense{
		nil,
		{off("A/A", "convention", "a.rb", 1)},
		{off("A/A", "warning", "a.rb", 1), off("A/A", "convention", "a.rb", 2)},
		{off("A/A", "error", "a.rb", 1)},
	}
	order := []string{"convention", "warning", "error"}
	for _, set := range sets {
		prev := 1
		for _, th := range order {
			got := Aggregator{Policy: policy(th)}.Aggregate([]RuleResult{{RuleID: "A/A", Offenses: set}}).ExitCode()
			assert.LessOrEqual(t, got, prev, "threshold %s should not fail where a looser one passed", th)
			prev = got
		}
	}
}

func TestCoverageGateShortCircuits(t *testing.T) {
	minCov := 80.0
	calc := &fixedCoverage{pct: 50}
	r := Aggregator{
		Policy:   &Policy{FailOnSeverity: "error", MinCoverage: &minCov},
		Coverage: calc,
		Files:    []string{"a.rb"},
	}.Aggregate(nil)
	assert.Empty(t, r.Offenses())
	assert.Equal(t, 1, r.ExitCode())
	assert.Equal(t, 1, r.ExitCode())
	require.NotNil(t, r.Coverage())
	assert.Equal(t, 1, calc.calls, "coverage is memoized")
}

func TestCoverageSkipped(t *testing.T) {
	minCov := 80.0
	calc := &fixedCoverage{pct: 10}

	r := Aggregator{Policy: &Policy{MinCoverage: &minCov}, Coverage: calc}.Aggregate(nil)
	assert.Nil(t, r.Coverage(), "no files")
	assert.Equal(t, 0, r.ExitCode())

	r = Aggregator{Coverage: calc, Files: []string{"a.rb"}}.Aggregate(nil)
	assert.Nil(t, r.Coverage(), "no policy")

	r = Aggregator{Policy: &Policy{MinCoverage: &minCov}, Files: []string{"a.rb"}}.Aggregate(nil)
	assert.Nil(t, r.Coverage(), "no calculator")
	assert.Equal(t, 0, r.ExitCode())

	failing := &fixedCoverage{err: errors.New("engine gone")}
	r = Aggregator{Policy: &Policy{MinCoverage: &minCov}, Coverage: failing, Files: []string{"a.rb"}}.Aggregate(nil)
	assert.Nil(t, r.Coverage())
	assert.Equal(t, 0, r.ExitCode())
	assert.Equal(t, 0, calc.calls)
}

func TestAggregateOrderingAndCount(t *testing.T) {
	rs := []RuleResult{
		{RuleID: "B/B", Offenses: []results.Offense{off("B/B", "error", "b.rb", 9), off("B/B", "error", "a.rb", 3)}},
		{RuleID: "A/A", Offenses: []results.Offense{
			off("A/A", "warning", "z.rb", 1),
			{RuleID: "A/A", Severity: "warning", Location: "a.rb", LocationLine: 5, Message: "first"},
			{RuleID: "A/A", Severity: "warning", Location: "a.rb", LocationLine: 5, Message: "second"},
		}},
		{RuleID: "C/C", Inconclusive: true},
	}
	r := Aggregator{}.Aggregate(rs)
	got := r.Offenses()
	require.Len(t, got, 5, "count equals the per-rule sum")
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.Equal(t, "z.rb", got[2].Location)
	assert.Equal(t, "a.rb", got[3].Location)
	assert.Equal(t, "b.rb", got[4].Location)
	assert.Equal(t, []string{"C/C"}, r.Inconclusive())
	assert.Equal(t, 5, r.Statistics().Total)
}

func TestReportJSONShape(t *testing.T) {
	r := Aggregator{Policy: policy("warning")}.Aggregate(nil)
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"offenses":[],"statistics":{"error":0,"warning":0,"convention":0,"total":0},"coverage":null,"exit_code":0}`,
		string(b))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(b, &snap))
	assert.Equal(t, 0, snap.ExitCode)
}
