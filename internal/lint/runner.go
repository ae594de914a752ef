// Package lint drives a full run: every enabled rule is executed, parsed and
// built into offenses on a bounded pool, then aggregated into a report.
package lint

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codewithboateng/doclint/internal/config"
	"github.com/codewithboateng/doclint/internal/executor"
	"github.com/codewithboateng/doclint/internal/report"
	"github.com/codewithboateng/doclint/internal/results"
	"github.com/codewithboateng/doclint/internal/rules"
	"github.com/codewithboateng/doclint/internal/shared"
)

// RuleExecutor runs one rule. *executor.Executor satisfies it.
type RuleExecutor interface {
	Execute(ctx context.Context, rule rules.Rule, files []string) (executor.Output, error)
}

type Runner struct {
	Rules       []rules.Rule // execution order; rules.List() when nil
	Resolver    *config.Resolver
	Executor    RuleExecutor
	Coverage    report.CoverageCalculator
	Policy      *report.Policy
	Parallelism int
	Logger      *zap.SugaredLogger
}

// PolicyFrom reads the exit-code policy from the global layer.
func PolicyFrom(res *config.Resolver) *report.Policy {
	p := &report.Policy{FailOnSeverity: res.FailOnSeverity()}
	if v, ok := res.MinCoverage(); ok {
		p.MinCoverage = &v
	}
	return p
}

// Validate checks that every enabled rule can produce offenses.
func (r *Runner) Validate() error {
	for _, rule := range r.enabled() {
		if rule.Parse == nil {
			return &results.Error{RuleID: rule.ID, Msg: "rule has no output parser"}
		}
		if rule.Message == nil {
			return &results.Error{RuleID: rule.ID, Msg: "rule has no message formatter"}
		}
	}
	return nil
}

func (r *Runner) enabled() []rules.Rule {
	all := r.Rules
	if all == nil {
		all = rules.List()
	}
	var out []rules.Rule
	for _, rule := range all {
		on := rule.DefaultEnabled
		if r.Resolver != nil {
			on = r.Resolver.IsEnabled(rule.ID)
		}
		if on {
			out = append(out, rule)
		}
	}
	return out
}

// Run executes every enabled rule over files and aggregates the results.
// Contract violations and build errors abort the run; other rule failures
// are logged and mark that rule inconclusive.
func (r *Runner) Run(ctx context.Context, files []string) (*report.Report, error) {
	if r.Executor == nil {
		return nil, errors.New("lint: no executor")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	log := shared.OrNop(r.Logger)
	enabled := r.enabled()
	slots := make([]report.RuleResult, len(enabled))

	limit := r.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rule := range enabled {
		g.Go(func() error {
			res, err := r.runRule(gctx, rule, files, log)
			if err != nil {
				return err
			}
			slots[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := report.Aggregator{
		Policy:   r.Policy,
		Coverage: r.Coverage,
		Files:    files,
		Logger:   log,
	}
	rep := agg.Aggregate(slots)
	log.Infow("lint complete", "rules", len(enabled), "offenses", len(rep.Offenses()),
		"inconclusive", rep.Inconclusive())
	return rep, nil
}

func (r *Runner) runRule(ctx context.Context, rule rules.Rule, files []string, log *zap.SugaredLogger) (report.RuleResult, error) {
	res := report.RuleResult{RuleID: rule.ID}
	out, err := r.Executor.Execute(ctx, rule, files)
	if err != nil {
		if errors.Is(err, rules.ErrContract) || ctx.Err() != nil {
			return res, err
		}
		log.Warnw("rule run failed", "rule", rule.ID, "error", err)
		res.Inconclusive = true
		return res, nil
	}
	res.Inconclusive = out.Inconclusive()

	var sev results.SeverityResolver
	if r.Resolver != nil {
		sev = r.Resolver
	}
	offenses, err := results.Builder{Severity: sev}.Build(rule.Parse(out.Stdout), rule)
	if err != nil {
		return res, fmt.Errorf("build offenses: %w", err)
	}
	res.Offenses = offenses
	log.Debugw("rule finished", "rule", rule.ID, "strategy", rule.Strategy.String(),
		"offenses", len(offenses), "status", out.ExitStatus)
	return res, nil
}
