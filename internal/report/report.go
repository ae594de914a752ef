// Package report merges per-rule offenses into one verdict.
package report

import (
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/codewithboateng/doclint/internal/coverage"
	"github.com/codewithboateng/doclint/internal/results"
	"github.com/codewithboateng/doclint/internal/rules"
	"github.com/codewithboateng/doclint/internal/shared"
)

// RuleResult is what one rule run contributed.
type RuleResult struct {
	RuleID       string
	Offenses     []results.Offense
	Inconclusive bool
}

// Policy is the exit-code configuration. A nil *Policy means no policy.
type Policy struct {
	FailOnSeverity string
	MinCoverage    *float64
}

// CoverageCalculator computes documentation coverage for a file set.
type CoverageCalculator interface {
	Calculate(files []string) (*coverage.Result, error)
}

// Statistics counts offenses per severity.
type Statistics struct {
	Error      int `json:"error"`
	Warning    int `json:"warning"`
	Convention int `json:"convention"`
	Total      int `json:"total"`
}

type Aggregator struct {
	Policy   *Policy
	Coverage CoverageCalculator
	Files    []string
	Logger   *zap.SugaredLogger
}

// Aggregate flattens results and orders offenses by rule id, file and line.
// The sort is stable, so emission order survives within a location.
func (a Aggregator) Aggregate(rs []RuleResult) *Report {
	var offenses []results.Offense
	var inconclusive []string
	for _, r := range rs {
		offenses = append(offenses, r.Offenses...)
		if r.Inconclusive {
			inconclusive = append(inconclusive, r.RuleID)
		}
	}
	sort.SliceStable(offenses, func(i, j int) bool {
		x, y := offenses[i], offenses[j]
		if x.RuleID != y.RuleID {
			return x.RuleID < y.RuleID
		}
		if x.Location != y.Location {
			return x.Location < y.Location
		}
		return x.LocationLine < y.LocationLine
	})
	sort.Strings(inconclusive)

	return &Report{
		offenses:     offenses,
		inconclusive: inconclusive,
		policy:       a.Policy,
		calc:         a.Coverage,
		files:        append([]string(nil), a.Files...),
		logger:       shared.OrNop(a.Logger),
	}
}

// Report is immutable; derived figures are computed once on first use.
type Report struct {
	offenses     []results.Offense
	inconclusive []string
	policy       *Policy
	calc         CoverageCalculator
	files        []string
	logger       *zap.SugaredLogger

	statsOnce sync.Once
	stats     Statistics
	covOnce   sync.Once
	cov       *coverage.Result
	exitOnce  sync.Once
	exit      int
}

// Offenses returns a copy of the ordered offenses.
func (r *Report) Offenses() []results.Offense {
	return append([]results.Offense(nil), r.offenses...)
}

// Inconclusive lists rules whose engine run failed without output.
func (r *Report) Inconclusive() []string {
	return append([]string(nil), r.inconclusive...)
}

func (r *Report) Statistics() Statistics {
	r.statsOnce.Do(func() {
		for _, o := range r.offenses {
			switch rules.NormalizeSeverity(o.Severity) {
			case rules.SeverityError:
				r.stats.Error++
			case rules.SeverityWarning:
				r.stats.Warning++
			case rules.SeverityConvention:
				r.stats.Convention++
			}
			r.stats.Total++
		}
	})
	return r.stats
}

// Coverage is computed only with a policy and a non-empty file set. A missing
// or failing calculator yields nil, which disables the coverage gate.
func (r *Report) Coverage() *coverage.Result {
	r.covOnce.Do(func() {
		if r.policy == nil || len(r.files) == 0 || r.calc == nil {
			return
		}
		res, err := r.calc.Calculate(r.files)
		if err != nil {
			r.logger.Warnw("coverage unavailable", "error", err)
			return
		}
		r.cov = res
	})
	return r.cov
}

// ExitCode is 1 when the run fails the policy, else 0.
func (r *Report) ExitCode() int {
	r.exitOnce.Do(func() { r.exit = r.computeExit() })
	return r.exit
}

func (r *Report) computeExit() int {
	if r.policy != nil && r.policy.MinCoverage != nil {
		if cov := r.Coverage(); cov != nil && cov.Coverage < *r.policy.MinCoverage {
			return 1
		}
	}
	if len(r.offenses) == 0 {
		return 0
	}
	if r.policy == nil {
		return 0
	}
	st := r.Statistics()
	switch rules.NormalizeSeverity(r.policy.FailOnSeverity) {
	case rules.SeverityError:
		return boolExit(st.Error > 0)
	case rules.SeverityWarning:
		return boolExit(st.Error+st.Warning > 0)
	case rules.SeverityConvention:
		return boolExit(st.Total > 0)
	}
	return 0
}

func boolExit(fail bool) int {
	if fail {
		return 1
	}
	return 0
}

type reportJSON struct {
	Offenses     []results.Offense `json:"offenses"`
	Statistics   Statistics        `json:"statistics"`
	Coverage     *coverage.Result  `json:"coverage"`
	ExitCode     int               `json:"exit_code"`
	Inconclusive []string          `json:"inconclusive,omitempty"`
}

func (r *Report) MarshalJSON() ([]byte, error) {
	offenses := r.offenses
	if offenses == nil {
		offenses = []results.Offense{}
	}
	return json.Marshal(reportJSON{
		Offenses:     offenses,
		Statistics:   r.Statistics(),
		Coverage:     r.Coverage(),
		ExitCode:     r.ExitCode(),
		Inconclusive: r.inconclusive,
	})
}

// Snapshot is a decoded report, as stored or served.
type Snapshot struct {
	Offenses     []results.Offense `json:"offenses"`
	Statistics   Statistics        `json:"statistics"`
	Coverage     *coverage.Result  `json:"coverage"`
	ExitCode     int               `json:"exit_code"`
	Inconclusive []string          `json:"inconclusive,omitempty"`
}

// Snapshot freezes the report's derived figures.
func (r *Report) Snapshot() Snapshot {
	return Snapshot{
		Offenses:     r.Offenses(),
		Statistics:   r.Statistics(),
		Coverage:     r.Coverage(),
		ExitCode:     r.ExitCode(),
		Inconclusive: r.Inconclusive(),
	}
}
